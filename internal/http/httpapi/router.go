package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"wellspring/internal/http/handlers"
	"wellspring/internal/middleware"
)

// Options configures cross-cutting router behavior.
type Options struct {
	JWTSecret       string
	AllowedOrigins  []string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
	Logger          zerolog.Logger
}

// NewRouter assembles the public HTTP surface.
func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.Locale("en", opts.CountryLookup))
	r.Use(middleware.Auth(opts.JWTSecret))

	r.Get("/v1/healthz", app.Health)

	r.Route("/wells", func(r chi.Router) {
		r.Get("/", app.WellsList)
		r.Get("/stats", app.WellsStats)
		r.Get("/{id}", app.WellsGet)
		r.Post("/create", app.WellsCreate)
		r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute)).
			Put("/donate", app.WellsDonate)
	})

	return r
}
