// Package campaign owns the campaign lifecycle: creation with its
// uniqueness rules, reads, and the expiration sweep.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wellspring/internal/domain"
	"wellspring/internal/gateway"
)

// CreateParams carries the immutable input for a campaign creation request.
type CreateParams struct {
	OwnerID      string
	Title        string
	Description  string
	Location     string
	TargetAmount int64
	DurationDays int
	PayoutSource string
}

// Manager coordinates campaign creation and expiration.
type Manager struct {
	store       domain.CampaignStore
	gateway     gateway.Client
	analytics   domain.AnalyticsStore
	logger      zerolog.Logger
	targetLimit int64
	now         func() time.Time
}

// NewManager wires a Manager. analytics may be nil.
func NewManager(store domain.CampaignStore, gw gateway.Client, analytics domain.AnalyticsStore, logger zerolog.Logger, targetLimit int64) *Manager {
	if targetLimit <= 0 {
		targetLimit = domain.DefaultTargetLimit
	}
	return &Manager{
		store:       store,
		gateway:     gw,
		analytics:   analytics,
		logger:      logger,
		targetLimit: targetLimit,
		now:         time.Now,
	}
}

// WithClock overrides the manager's clock. Test hook.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Create validates the request, provisions a payout account with the
// gateway, and persists a new open campaign expiring after DurationDays.
func (m *Manager) Create(ctx context.Context, p CreateParams) (*domain.Campaign, error) {
	if strings.TrimSpace(p.OwnerID) == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if err := domain.CollectFieldErrors(
		domain.CheckTitle(p.Title),
		domain.CheckDescription(p.Description),
		domain.CheckLocation(p.Location),
		domain.CheckTargetAmount(p.TargetAmount, m.targetLimit),
		domain.CheckDuration(p.DurationDays),
	); err != nil {
		return nil, err
	}

	// Fast-path uniqueness checks. The store's constraints remain
	// authoritative for requests racing through this window.
	if _, err := m.store.FindOpenByOwner(ctx, p.OwnerID); err == nil {
		return nil, domain.ErrDuplicateCampaign
	} else if !errors.Is(err, domain.ErrCampaignNotFound) {
		return nil, fmt.Errorf("campaign: check owner: %w", err)
	}
	if _, err := m.store.FindOpenByLocation(ctx, p.Location); err == nil {
		return nil, domain.ErrDuplicateLocation
	} else if !errors.Is(err, domain.ErrCampaignNotFound) {
		return nil, fmt.Errorf("campaign: check location: %w", err)
	}

	accountID, err := m.gateway.CreateConnectedAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("campaign: provision payout account: %w", err)
	}
	payoutToken, err := m.gateway.AttachExternalAccount(ctx, accountID, p.PayoutSource)
	if err != nil {
		return nil, fmt.Errorf("campaign: attach payout source: %w", err)
	}

	now := m.now().UTC()
	campaign := &domain.Campaign{
		ID:           uuid.NewString(),
		OwnerID:      p.OwnerID,
		Title:        p.Title,
		Description:  p.Description,
		Location:     p.Location,
		TargetAmount: p.TargetAmount,
		Status:       domain.CampaignOpen,
		PayoutToken:  payoutToken,
		ExpiresAt:    now.AddDate(0, 0, p.DurationDays),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.store.Create(ctx, campaign); err != nil {
		return nil, err
	}
	m.logger.Info().
		Str("campaign_id", campaign.ID).
		Str("owner_id", campaign.OwnerID).
		Time("expires_at", campaign.ExpiresAt).
		Msg("campaign created")
	m.bumpCounters(ctx, now, map[string]int{"campaigns_created": 1})
	return campaign, nil
}

// Get returns a single campaign.
func (m *Manager) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	return m.store.GetByID(ctx, id)
}

// List returns all campaigns.
func (m *Manager) List(ctx context.Context) ([]domain.Campaign, error) {
	return m.store.List(ctx)
}

// SweepExpired transitions open campaigns past their expiry to EXPIRED and
// returns how many changed. Idempotent; safe to run concurrently with the
// donation pipeline, which grants already-authorized charges their own
// grace at commit time.
func (m *Manager) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	n, err := m.store.MarkExpired(ctx, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("campaign: sweep expired: %w", err)
	}
	if n > 0 {
		m.logger.Info().Int("expired", n).Msg("campaign sweep")
	}
	return n, nil
}

func (m *Manager) bumpCounters(ctx context.Context, now time.Time, counters map[string]int) {
	if m.analytics == nil {
		return
	}
	if err := m.analytics.IncrementCounters(ctx, now.Format("2006-01-02"), counters); err != nil {
		m.logger.Warn().Err(err).Msg("campaign: analytics update failed")
	}
}
