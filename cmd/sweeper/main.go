// The sweeper transitions campaigns past their expiry to EXPIRED on a poll
// interval and, when NATS is configured, re-attempts failed message
// attachments from the retry subject.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wellspring/internal/adapter/repo"
	"wellspring/internal/campaign"
	"wellspring/internal/domain"
	"wellspring/internal/events"
	"wellspring/internal/infra"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "sweeper")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("sweeper: db connection failed")
	}
	defer pool.Close()

	campaigns := repo.NewCampaignRepository(pool)
	messages := repo.NewMessageRepository(pool)
	manager := campaign.NewManager(campaigns, nil, nil, logger, cfg.TargetLimit)

	natsConn, err := infra.NewNATSConn(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("sweeper: nats connection failed")
	}
	if natsConn != nil {
		defer natsConn.Drain()
		sub, err := events.SubscribeMessageRetry(natsConn, func(msg domain.Message) {
			if err := messages.Create(ctx, &msg); err != nil {
				logger.Error().Err(err).Str("message_id", msg.ID).Msg("sweeper: message attach retry failed")
				return
			}
			logger.Info().Str("message_id", msg.ID).Msg("sweeper: message attached")
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("sweeper: subscribe failed")
		}
		defer sub.Unsubscribe()
	}

	logger.Info().Dur("interval", cfg.SweepInterval).Msg("sweeper: started")
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("sweeper: stopped")
			return
		case now := <-ticker.C:
			if _, err := manager.SweepExpired(ctx, now); err != nil {
				logger.Error().Err(err).Msg("sweeper: sweep failed")
			}
		}
	}
}
