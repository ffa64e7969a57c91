package domain

import "time"

// Reconciliation records a gateway charge that succeeded but could not be
// reflected in the ledger. These are never dropped; an operator (or a
// replay job) resolves them against the gateway's records.
type Reconciliation struct {
	ID         string
	CampaignID string
	DonorID    string
	Amount     int64
	ChargeID   string
	Reason     string
	Resolved   bool
	CreatedAt  time.Time
}
