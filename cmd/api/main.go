package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"wellspring/internal/adapter/repo"
	"wellspring/internal/cache"
	"wellspring/internal/campaign"
	"wellspring/internal/domain"
	"wellspring/internal/events"
	"wellspring/internal/gateway"
	"wellspring/internal/http/handlers"
	"wellspring/internal/http/httpapi"
	"wellspring/internal/infra"
	"wellspring/internal/infra/geoip"
	"wellspring/internal/middleware"
	"wellspring/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := infra.EnsureSchema(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("schema bootstrap failed")
	}

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	campaigns := repo.NewCampaignRepository(pool)
	donations := repo.NewDonationRepository(pool)
	messages := repo.NewMessageRepository(pool)
	reconciliations := repo.NewReconciliationRepository(pool)
	analytics := repo.NewAnalyticsRepository(pool)

	gw, err := gateway.NewStripeClient(gateway.Options{
		SecretKey: cfg.StripeSecretKey,
		BaseURL:   cfg.StripeBaseURL,
		Currency:  cfg.Currency,
		Logger:    &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure payment gateway")
	}

	redisClient, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	campaignCache := cache.NewCampaignCache(redisClient, cfg.CacheTTL)

	natsConn, err := infra.NewNATSConn(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect nats")
	}

	var publisher events.Publisher
	var retryQueue pipeline.MessageRetryQueue
	if natsConn != nil {
		defer natsConn.Drain()
		natsPub := events.NewNATSPublisher(natsConn)
		publisher = natsPub
		retryQueue = natsRetryQueue{natsPub}
	} else {
		retrier := pipeline.NewRetrier(messages, logger, 64)
		retrier.Start(ctx)
		retryQueue = retrier
	}

	manager := campaign.NewManager(campaigns, gw, analytics, logger, cfg.TargetLimit)
	pl := pipeline.New(pipeline.Stores{
		Campaigns:       campaigns,
		Donations:       donations,
		Messages:        messages,
		Reconciliations: reconciliations,
		Analytics:       analytics,
	}, gw, retryQueue, publisher, logger)

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	app := handlers.NewApp(manager, pl, donations, messages, reconciliations, campaignCache, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CountryLookup:   lookup,
		Logger:          logger,
	})

	server := infra.NewHTTPServer(cfg, router, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// natsRetryQueue routes message retries through the broker; cmd/sweeper
// consumes the subject.
type natsRetryQueue struct {
	pub *events.NATSPublisher
}

func (q natsRetryQueue) Enqueue(ctx context.Context, msg domain.Message) error {
	return q.pub.MessageRetry(ctx, msg)
}
