package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"wellspring/internal/campaign"
	"wellspring/internal/domain"
	"wellspring/internal/middleware"
	"wellspring/internal/pipeline"
)

type wellResponse struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	TargetAmount  int64     `json:"funding_target"`
	CurrentAmount int64     `json:"current_amount"`
	Status        string    `json:"status"`
	ExpiresAt     time.Time `json:"expiration_date"`
	CreatedAt     time.Time `json:"created_at"`
}

func toWellResponse(c domain.Campaign) wellResponse {
	return wellResponse{
		ID:            c.ID,
		OwnerID:       c.OwnerID,
		Title:         c.Title,
		Description:   c.Description,
		Location:      c.Location,
		TargetAmount:  c.TargetAmount,
		CurrentAmount: c.CurrentAmount,
		Status:        string(c.Status),
		ExpiresAt:     c.ExpiresAt,
		CreatedAt:     c.CreatedAt,
	}
}

// WellsList serves GET /wells.
func (a *App) WellsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, hit := a.Cache.GetList(ctx)
	if !hit {
		var err error
		items, err = a.Campaigns.List(ctx)
		if err != nil {
			a.fail(w, err)
			return
		}
		a.Cache.SetList(ctx, items)
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"wells":   lo.Map(items, func(c domain.Campaign, _ int) wellResponse { return toWellResponse(c) }),
	})
}

type donationResponse struct {
	ID        string    `json:"id"`
	DonorID   string    `json:"donor_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// WellsGet serves GET /wells/{id} with the campaign's donations and messages.
func (a *App) WellsGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	well, err := a.Campaigns.Get(ctx, id)
	if err != nil {
		a.fail(w, err)
		return
	}
	donations, err := a.Donations.ListByCampaign(ctx, well.ID)
	if err != nil {
		a.fail(w, err)
		return
	}
	messages, err := a.Messages.ListByCampaign(ctx, well.ID)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"well":    toWellResponse(*well),
		"donations": lo.Map(donations, func(d domain.Donation, _ int) donationResponse {
			return donationResponse{ID: d.ID, DonorID: d.DonorID, Amount: d.Amount, CreatedAt: d.CreatedAt}
		}),
		"messages": lo.Map(messages, func(m domain.Message, _ int) messageResponse {
			return messageResponse{ID: m.ID, AuthorID: m.AuthorID, Body: m.Body, CreatedAt: m.CreatedAt}
		}),
	})
}

type createWellRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	Location     string `json:"location" validate:"required"`
	TargetAmount int64  `json:"funding_target" validate:"required"`
	DurationDays int    `json:"time" validate:"required"`
	PayoutSource string `json:"token" validate:"required"`
}

// WellsCreate serves POST /wells/create.
func (a *App) WellsCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		a.fail(w, domain.ErrNotAuthenticated)
		return
	}
	var req createWellRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, codeBadRequest, "invalid payload")
		return
	}
	well, err := a.Campaigns.Create(r.Context(), campaign.CreateParams{
		OwnerID:      user.ID,
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		TargetAmount: req.TargetAmount,
		DurationDays: req.DurationDays,
		PayoutSource: req.PayoutSource,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.Cache.Invalidate(r.Context())
	a.json(w, http.StatusCreated, map[string]any{"success": true, "well": toWellResponse(*well)})
}

type donateRequest struct {
	WellID      string `json:"id" validate:"required"`
	Amount      int64  `json:"amount" validate:"required"`
	SourceToken string `json:"token" validate:"required"`
	Message     string `json:"message"`
}

// WellsDonate serves PUT /wells/donate. A receipt is returned whenever the
// charge succeeded, even if the ledger write had to go to reconciliation.
func (a *App) WellsDonate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		a.fail(w, domain.ErrNotAuthenticated)
		return
	}
	var req donateRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, codeBadRequest, "invalid payload")
		return
	}
	receipt, err := a.Pipeline.Donate(r.Context(), pipeline.DonateParams{
		CampaignID:   req.WellID,
		DonorID:      user.ID,
		DonorEmail:   user.Email,
		SourceToken:  req.SourceToken,
		Amount:       req.Amount,
		Message:      req.Message,
		DonorCountry: middleware.CountryFromContext(r.Context()),
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.Cache.Invalidate(r.Context())
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"receipt": map[string]any{
			"donation_id":    receipt.DonationID,
			"charge_id":      receipt.ChargeID,
			"new_total":      receipt.NewTotal,
			"message_queued": receipt.MessageQueued,
			"reconciliation": receipt.Reconciliation,
		},
	})
}
