package domain

import (
	"context"
	"time"
)

// CampaignStore defines persistence for campaigns.
type CampaignStore interface {
	Create(ctx context.Context, campaign *Campaign) error
	GetByID(ctx context.Context, id string) (*Campaign, error)
	List(ctx context.Context) ([]Campaign, error)
	FindOpenByOwner(ctx context.Context, ownerID string) (*Campaign, error)
	FindOpenByLocation(ctx context.Context, location string) (*Campaign, error)
	MarkExpired(ctx context.Context, now time.Time) (int, error)
}

// DonationStore appends donations and keeps campaign totals consistent.
//
// AppendDonationAndIncrement records the donation and increments the
// campaign's running total in one linearizable step per campaign: two
// concurrent calls for the same campaign serialize, and neither can observe
// a stale total. authorizedAt is the instant the gateway charge succeeded;
// a campaign that expired after that instant still accepts the donation.
type DonationStore interface {
	AppendDonationAndIncrement(ctx context.Context, donation *Donation, authorizedAt time.Time) (newTotal int64, err error)
	ListByCampaign(ctx context.Context, campaignID string) ([]Donation, error)
}

// MessageStore defines persistence for donor messages.
type MessageStore interface {
	Create(ctx context.Context, message *Message) error
	ListByCampaign(ctx context.Context, campaignID string) ([]Message, error)
}

// ReconciliationStore keeps durable records of charges that could not be
// written to the ledger. Append must not fail silently.
type ReconciliationStore interface {
	Append(ctx context.Context, rec *Reconciliation) error
	ListUnresolved(ctx context.Context, limit int) ([]Reconciliation, error)
}

// AnalyticsStore updates daily counters.
type AnalyticsStore interface {
	IncrementCounters(ctx context.Context, day string, counters map[string]int) error
}
