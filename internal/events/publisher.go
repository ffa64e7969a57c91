// Package events publishes donation lifecycle events for downstream
// consumers: cache invalidation, analytics, and the async message-attach
// retry loop.
package events

import (
	"context"

	"wellspring/internal/domain"
)

// DonationRecorded is emitted once a donation has settled in the ledger.
type DonationRecorded struct {
	DonationID string `json:"donation_id"`
	CampaignID string `json:"campaign_id"`
	DonorID    string `json:"donor_id"`
	Amount     int64  `json:"amount"`
	ChargeID   string `json:"charge_id"`
	NewTotal   int64  `json:"new_total"`
}

// Publisher is the event sink the pipeline writes to.
type Publisher interface {
	DonationRecorded(ctx context.Context, evt DonationRecorded) error
	MessageRetry(ctx context.Context, msg domain.Message) error
}

// Nop discards all events. Used when no broker is configured.
type Nop struct{}

func (Nop) DonationRecorded(context.Context, DonationRecorded) error { return nil }

func (Nop) MessageRetry(context.Context, domain.Message) error { return nil }
