package domain

import "time"

// CampaignStatus enumerates campaign lifecycle states.
type CampaignStatus string

const (
	CampaignOpen    CampaignStatus = "OPEN"
	CampaignExpired CampaignStatus = "EXPIRED"
	CampaignClosed  CampaignStatus = "CLOSED"
)

// Campaign represents a fundraising well with a target and a running total.
// CurrentAmount is derived; it always equals the sum of recorded donation
// amounts for the campaign and only the donation pipeline mutates it.
type Campaign struct {
	ID            string
	OwnerID       string
	Title         string
	Description   string
	Location      string
	TargetAmount  int64
	CurrentAmount int64
	Status        CampaignStatus
	PayoutToken   string
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsOpen reports whether the campaign accepts new donations.
func (c Campaign) IsOpen() bool {
	return c.Status == CampaignOpen
}

// AcceptsChargeAuthorizedAt reports whether a charge authorized at the given
// instant may still settle against this campaign. A campaign that expired
// after the charge was authorized still accepts it; money already moved.
func (c Campaign) AcceptsChargeAuthorizedAt(authorizedAt time.Time) bool {
	if c.Status == CampaignOpen {
		return true
	}
	if c.Status == CampaignExpired && !authorizedAt.After(c.ExpiresAt) {
		return true
	}
	return false
}
