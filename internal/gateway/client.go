// Package gateway talks to the external payment processor. The processor is
// a collaborator, not part of this system: it holds the money movement, we
// hold the ledger.
package gateway

import (
	"context"
	"errors"
)

// Typed gateway failures. Timeout is deliberately distinct from unavailable:
// a timed-out charge may have partially succeeded, so callers must never
// retry it automatically.
var (
	ErrCardDeclined       = errors.New("gateway: card declined")
	ErrInvalidSource      = errors.New("gateway: invalid payment source")
	ErrGatewayUnavailable = errors.New("gateway: unavailable")
	ErrGatewayTimeout     = errors.New("gateway: timeout")
)

// ChargeResult is the outcome of a captured charge.
type ChargeResult struct {
	ChargeID string
	Status   string
}

// Client is the payment processor capability the donation pipeline and the
// campaign manager depend on.
type Client interface {
	// CreateCustomer registers the donor's payment source and returns a
	// customer id usable for charging.
	CreateCustomer(ctx context.Context, email, sourceToken string) (string, error)
	// Charge authorizes and captures amountMinor from the customer, routed
	// to the campaign's payout account. This is the externally-irreversible
	// step of a donation.
	Charge(ctx context.Context, customerID string, amountMinor int64, destinationToken string) (*ChargeResult, error)
	// CreateConnectedAccount provisions a payout account for a new campaign.
	CreateConnectedAccount(ctx context.Context) (string, error)
	// AttachExternalAccount binds the owner's bank token to the connected
	// account and returns the payout token stored on the campaign.
	AttachExternalAccount(ctx context.Context, accountID, sourceToken string) (string, error)
}

// Retryable reports whether a gateway error is transient. Declined cards and
// bad sources will not succeed on retry; timeouts must not be retried because
// the charge may already have landed.
func Retryable(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}
