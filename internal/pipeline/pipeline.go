// Package pipeline orchestrates a donation from request to receipt:
// validate the campaign, capture the charge with the payment gateway, then
// settle the donation in the ledger and optionally attach the donor's
// message. The gateway charge is the single irreversible step; everything
// after it must either land in the ledger or in a reconciliation record.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wellspring/internal/domain"
	"wellspring/internal/events"
	"wellspring/internal/gateway"
)

// Stage names for a donation attempt. An attempt only ever moves forward;
// failures before StageRecorded end in StageRejected, failures after it do
// not fail the attempt at all.
type Stage string

const (
	StageRequested       Stage = "REQUESTED"
	StageAuthorized      Stage = "GATEWAY_AUTHORIZED"
	StageRecorded        Stage = "RECORDED"
	StageMessageAttached Stage = "MESSAGE_ATTACHED"
	StageComplete        Stage = "COMPLETE"
	StageRejected        Stage = "REJECTED"
)

// DonateParams carries the immutable input of one donation attempt.
type DonateParams struct {
	CampaignID   string
	DonorID      string
	DonorEmail   string
	SourceToken  string
	Amount       int64
	Message      string
	DonorCountry string
}

// MessageRetryQueue re-attempts message attachment outside the donation
// request path.
type MessageRetryQueue interface {
	Enqueue(ctx context.Context, msg domain.Message) error
}

// Stores groups the persistence contracts the pipeline writes through.
type Stores struct {
	Campaigns       domain.CampaignStore
	Donations       domain.DonationStore
	Messages        domain.MessageStore
	Reconciliations domain.ReconciliationStore
	Analytics       domain.AnalyticsStore
}

// Pipeline executes donation attempts.
type Pipeline struct {
	stores  Stores
	gateway gateway.Client
	retry   MessageRetryQueue
	events  events.Publisher
	logger  zerolog.Logger
	now     func() time.Time
	newID   func() string
}

// New wires a Pipeline. retry and publisher may be nil; Analytics may be
// nil inside stores.
func New(stores Stores, gw gateway.Client, retry MessageRetryQueue, publisher events.Publisher, logger zerolog.Logger) *Pipeline {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Pipeline{
		stores:  stores,
		gateway: gw,
		retry:   retry,
		events:  publisher,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// WithClock overrides the pipeline's clock. Test hook.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

type attempt struct {
	stage  Stage
	logger zerolog.Logger
}

func (a *attempt) advance(to Stage) {
	a.logger.Debug().Str("from", string(a.stage)).Str("to", string(to)).Msg("donation stage")
	a.stage = to
}

// Donate runs one donation attempt end to end and returns the receipt.
//
// The gateway charge happens before any campaign lock is taken; the ledger
// write is the sole per-campaign critical section and is delegated to the
// store. Once the charge has succeeded the attempt can no longer fail:
// a ledger fault becomes a reconciliation record and the receipt is still
// issued, flagged accordingly. Caller cancellation after the charge does
// not abort settlement.
func (p *Pipeline) Donate(ctx context.Context, params DonateParams) (*domain.DonationReceipt, error) {
	att := &attempt{stage: StageRequested, logger: p.logger.With().
		Str("campaign_id", params.CampaignID).
		Int64("amount", params.Amount).
		Logger()}

	if strings.TrimSpace(params.DonorID) == "" {
		att.advance(StageRejected)
		return nil, domain.ErrNotAuthenticated
	}
	campaign, err := p.stores.Campaigns.GetByID(ctx, params.CampaignID)
	if err != nil {
		att.advance(StageRejected)
		return nil, err
	}
	if !campaign.IsOpen() {
		att.advance(StageRejected)
		return nil, domain.ErrCampaignNotOpen
	}
	if params.Amount <= 0 {
		att.advance(StageRejected)
		return nil, domain.ErrNonPositiveAmount
	}

	// Irreversible step. No lock is held across these calls.
	customerID, err := p.gateway.CreateCustomer(ctx, params.DonorEmail, params.SourceToken)
	if err != nil {
		att.advance(StageRejected)
		return nil, fmt.Errorf("pipeline: create customer: %w", err)
	}
	charge, err := p.gateway.Charge(ctx, customerID, params.Amount, campaign.PayoutToken)
	if err != nil {
		att.advance(StageRejected)
		return nil, fmt.Errorf("pipeline: charge: %w", err)
	}
	authorizedAt := p.now().UTC()
	att.advance(StageAuthorized)

	// Money has moved; settlement must not be lost to caller cancellation.
	settleCtx := context.WithoutCancel(ctx)

	donation := &domain.Donation{
		ID:           p.newID(),
		CampaignID:   campaign.ID,
		DonorID:      params.DonorID,
		Amount:       params.Amount,
		ChargeID:     charge.ChargeID,
		DonorCountry: params.DonorCountry,
		CreatedAt:    authorizedAt,
	}
	newTotal, err := p.stores.Donations.AppendDonationAndIncrement(settleCtx, donation, authorizedAt)
	if err != nil {
		return p.reconcile(settleCtx, att, donation, err), nil
	}
	att.advance(StageRecorded)

	receipt := &domain.DonationReceipt{
		DonationID: donation.ID,
		CampaignID: campaign.ID,
		ChargeID:   charge.ChargeID,
		NewTotal:   newTotal,
	}

	if body := strings.TrimSpace(params.Message); body != "" && params.Amount >= domain.MessageThreshold {
		receipt.MessageQueued = true
		p.attachMessage(settleCtx, att, donation, body)
	}

	if err := p.events.DonationRecorded(settleCtx, events.DonationRecorded{
		DonationID: donation.ID,
		CampaignID: donation.CampaignID,
		DonorID:    donation.DonorID,
		Amount:     donation.Amount,
		ChargeID:   donation.ChargeID,
		NewTotal:   newTotal,
	}); err != nil {
		att.logger.Warn().Err(err).Msg("pipeline: donation event publish failed")
	}
	p.bumpCounters(settleCtx, authorizedAt, donation.Amount)

	att.advance(StageComplete)
	return receipt, nil
}

// reconcile records a successful charge that the ledger could not absorb.
// The donor still receives a receipt; the reconciliation record carries the
// charge id so an operator can settle it against the gateway.
func (p *Pipeline) reconcile(ctx context.Context, att *attempt, donation *domain.Donation, cause error) *domain.DonationReceipt {
	rec := &domain.Reconciliation{
		ID:         p.newID(),
		CampaignID: donation.CampaignID,
		DonorID:    donation.DonorID,
		Amount:     donation.Amount,
		ChargeID:   donation.ChargeID,
		Reason:     cause.Error(),
		CreatedAt:  p.now().UTC(),
	}
	att.logger.Error().Err(cause).
		Str("charge_id", donation.ChargeID).
		Str("reconciliation_id", rec.ID).
		Msg("pipeline: charge succeeded but ledger write failed, reconciliation required")
	if err := p.stores.Reconciliations.Append(ctx, rec); err != nil {
		// Last resort: the log line above is the only durable trace left.
		att.logger.Error().Err(err).
			Str("charge_id", donation.ChargeID).
			Int64("amount", donation.Amount).
			Str("campaign_id", donation.CampaignID).
			Str("donor_id", donation.DonorID).
			Msg("pipeline: reconciliation record write failed")
	}
	return &domain.DonationReceipt{
		DonationID:     donation.ID,
		CampaignID:     donation.CampaignID,
		ChargeID:       donation.ChargeID,
		Reconciliation: true,
	}
}

// attachMessage writes the donor message; on failure it is queued for
// asynchronous retry and never blocks the receipt.
func (p *Pipeline) attachMessage(ctx context.Context, att *attempt, donation *domain.Donation, body string) {
	msg := domain.Message{
		ID:         p.newID(),
		DonationID: donation.ID,
		CampaignID: donation.CampaignID,
		AuthorID:   donation.DonorID,
		Body:       body,
		CreatedAt:  p.now().UTC(),
	}
	if err := p.stores.Messages.Create(ctx, &msg); err != nil {
		att.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("pipeline: message attach failed, queueing retry")
		if p.retry != nil {
			if qerr := p.retry.Enqueue(ctx, msg); qerr != nil {
				att.logger.Error().Err(qerr).Str("message_id", msg.ID).Msg("pipeline: message retry enqueue failed")
			}
		}
		return
	}
	att.advance(StageMessageAttached)
}

func (p *Pipeline) bumpCounters(ctx context.Context, now time.Time, amount int64) {
	if p.stores.Analytics == nil {
		return
	}
	counters := map[string]int{"donations": 1, "donated_amount": int(amount)}
	if err := p.stores.Analytics.IncrementCounters(ctx, now.Format("2006-01-02"), counters); err != nil {
		p.logger.Warn().Err(err).Msg("pipeline: analytics update failed")
	}
}
