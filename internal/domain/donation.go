package domain

import "time"

// MessageThreshold is the minimum donation amount, in minor currency units,
// that entitles the donor to attach a message to the campaign.
const MessageThreshold int64 = 500

// Donation represents a settled supporter contribution. Rows are append-only
// and immutable once recorded.
type Donation struct {
	ID           string
	CampaignID   string
	DonorID      string
	Amount       int64
	ChargeID     string
	DonorCountry string
	CreatedAt    time.Time
}

// Message is a donor note attached to a qualifying donation.
type Message struct {
	ID         string
	DonationID string
	CampaignID string
	AuthorID   string
	Body       string
	CreatedAt  time.Time
}

// DonationReceipt is returned to the donor once the charge has settled.
// Reconciliation is set when the charge succeeded but the ledger write
// failed; the donation is then tracked as a reconciliation record instead
// of a ledger row, and NewTotal carries the last total known to the caller.
type DonationReceipt struct {
	DonationID     string
	CampaignID     string
	ChargeID       string
	NewTotal       int64
	MessageQueued  bool
	Reconciliation bool
}
