package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"wellspring/internal/cache"
	"wellspring/internal/campaign"
	"wellspring/internal/domain"
	"wellspring/internal/gateway"
	"wellspring/internal/pipeline"
)

// API error codes. These match the public surface the frontend consumes.
const (
	codeBadRequest       = "BAD_REQUEST"
	codeServerUnknown    = "SERVER_UNKNOWN_ERROR"
	codeNotAuthenticated = "USER_NOT_AUTHENTICATED"
	codeAlreadyHasWell   = "USER_ALREADY_HAS_WELL"
	codeNonPositive      = "USER_DONATED_NEGATIVE_OR_ZERO_MONEY"
	codeWellNotFound     = "WELL_NOT_FOUND"
	codeWellNotOpen      = "WELL_NOT_OPEN"
	codeLocationUsed     = "LOCATION_ALREADY_USED"
	codeCardDeclined     = "CARD_DECLINED"
	codeInvalidSource    = "INVALID_SOURCE"
	codeGatewayTimeout   = "GATEWAY_TIMEOUT"
	codeGatewayDown      = "GATEWAY_UNAVAILABLE"
)

// App bundles the handlers' dependencies.
type App struct {
	Campaigns       *campaign.Manager
	Pipeline        *pipeline.Pipeline
	Donations       domain.DonationStore
	Messages        domain.MessageStore
	Reconciliations domain.ReconciliationStore
	Cache           *cache.CampaignCache
	Validate        *validator.Validate
	Logger          zerolog.Logger
}

// NewApp constructs the handler container.
func NewApp(manager *campaign.Manager, pl *pipeline.Pipeline, donations domain.DonationStore, messages domain.MessageStore, recs domain.ReconciliationStore, campaignCache *cache.CampaignCache, logger zerolog.Logger) *App {
	return &App{
		Campaigns:       manager,
		Pipeline:        pl,
		Donations:       donations,
		Messages:        messages,
		Reconciliations: recs,
		Cache:           campaignCache,
		Validate:        validator.New(validator.WithRequiredStructEnabled()),
		Logger:          logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{"success": false, "error": code, "message": message})
}

// fail maps a domain or gateway error to the API error envelope.
func (a *App) fail(w http.ResponseWriter, err error) {
	if ve, ok := domain.AsValidation(err); ok {
		fields := make([]map[string]any, len(ve.Fields))
		for i, f := range ve.Fields {
			fields[i] = map[string]any{"field": f.Field, "error": f.Code}
			if f.Max > 0 {
				fields[i]["acceptable_range"] = []int64{f.Min, f.Max}
			}
		}
		a.json(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   ve.Fields[0].Code,
			"fields":  fields,
		})
		return
	}

	status, code := http.StatusInternalServerError, codeServerUnknown
	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		status, code = http.StatusUnauthorized, codeNotAuthenticated
	case errors.Is(err, domain.ErrCampaignNotFound):
		status, code = http.StatusNotFound, codeWellNotFound
	case errors.Is(err, domain.ErrCampaignNotOpen):
		status, code = http.StatusConflict, codeWellNotOpen
	case errors.Is(err, domain.ErrDuplicateCampaign):
		status, code = http.StatusConflict, codeAlreadyHasWell
	case errors.Is(err, domain.ErrDuplicateLocation):
		status, code = http.StatusConflict, codeLocationUsed
	case errors.Is(err, domain.ErrNonPositiveAmount):
		status, code = http.StatusBadRequest, codeNonPositive
	case errors.Is(err, gateway.ErrCardDeclined):
		status, code = http.StatusPaymentRequired, codeCardDeclined
	case errors.Is(err, gateway.ErrInvalidSource):
		status, code = http.StatusBadRequest, codeInvalidSource
	case errors.Is(err, gateway.ErrGatewayTimeout):
		status, code = http.StatusGatewayTimeout, codeGatewayTimeout
	case errors.Is(err, gateway.ErrGatewayUnavailable):
		status, code = http.StatusBadGateway, codeGatewayDown
	default:
		a.Logger.Error().Err(err).Msg("unhandled api error")
		msg = "unexpected error"
	}
	a.error(w, status, code, msg)
}

// decode parses and tag-validates a JSON payload.
func (a *App) decode(r *http.Request, into any) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return err
	}
	return a.Validate.Struct(into)
}
