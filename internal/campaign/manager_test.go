package campaign

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"wellspring/internal/domain"
	"wellspring/internal/gateway"
	"wellspring/internal/ledger"
)

func newTestManager(t *testing.T) (*Manager, *ledger.MemoryStore, *gatewayStub) {
	t.Helper()
	store := ledger.NewMemoryStore()
	gw := &gatewayStub{}
	logger := zerolog.New(io.Discard)
	return NewManager(store, gw, nil, logger, 10000), store, gw
}

// gatewayStub satisfies gateway.Client for the payout-provisioning calls.
type gatewayStub struct {
	accounts    int
	attachments int
}

func (g *gatewayStub) CreateCustomer(context.Context, string, string) (string, error) {
	return "cus_test", nil
}

func (g *gatewayStub) Charge(context.Context, string, int64, string) (*gateway.ChargeResult, error) {
	panic("manager never charges")
}

func (g *gatewayStub) CreateConnectedAccount(context.Context) (string, error) {
	g.accounts++
	return "acct_test", nil
}

func (g *gatewayStub) AttachExternalAccount(_ context.Context, accountID, _ string) (string, error) {
	g.attachments++
	return "ba_" + accountID, nil
}

func validParams(owner string) CreateParams {
	return CreateParams{
		OwnerID:      owner,
		Title:        "clean water for tamale",
		Description:  "a well for the northern region",
		Location:     "9.4,-0.85",
		TargetAmount: 5000,
		DurationDays: 14,
		PayoutSource: "btok_test",
	}
}

func TestCreatePersistsOpenCampaign(t *testing.T) {
	req := require.New(t)
	m, store, gw := newTestManager(t)
	m.WithClock(func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) })

	well, err := m.Create(context.Background(), validParams("owner-1"))
	req.NoError(err)
	req.Equal(domain.CampaignOpen, well.Status)
	req.Equal("ba_acct_test", well.PayoutToken)
	req.Equal(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), well.ExpiresAt)
	req.Equal(1, gw.accounts)
	req.Equal(1, gw.attachments)

	got, err := store.GetByID(context.Background(), well.ID)
	req.NoError(err)
	req.Equal(int64(0), got.CurrentAmount)
}

func TestCreateRejectsSecondOpenCampaignForOwner(t *testing.T) {
	req := require.New(t)
	m, _, _ := newTestManager(t)

	_, err := m.Create(context.Background(), validParams("owner-1"))
	req.NoError(err)

	p := validParams("owner-1")
	p.Location = "10.1,3.2"
	_, err = m.Create(context.Background(), p)
	req.ErrorIs(err, domain.ErrDuplicateCampaign)
}

func TestCreateRejectsDuplicateLocation(t *testing.T) {
	req := require.New(t)
	m, _, _ := newTestManager(t)

	_, err := m.Create(context.Background(), validParams("owner-1"))
	req.NoError(err)

	_, err = m.Create(context.Background(), validParams("owner-2"))
	req.ErrorIs(err, domain.ErrDuplicateLocation)
}

func TestCreateAggregatesFieldErrors(t *testing.T) {
	req := require.New(t)
	m, _, gw := newTestManager(t)

	p := validParams("owner-1")
	p.Title = "ab"
	p.DurationDays = 45
	_, err := m.Create(context.Background(), p)
	ve, ok := domain.AsValidation(err)
	req.True(ok, "expected validation error, got %v", err)
	req.Len(ve.Fields, 2)
	req.Zero(gw.accounts, "invalid input must not reach the gateway")
}

func TestCreateRequiresIdentity(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.Create(context.Background(), validParams(""))
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestSweepExpiredTransitionsAndIsIdempotent(t *testing.T) {
	req := require.New(t)
	m, store, _ := newTestManager(t)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	m.WithClock(func() time.Time { return start })

	well, err := m.Create(context.Background(), validParams("owner-1"))
	req.NoError(err)

	past := start.AddDate(0, 0, 20)
	n, err := m.SweepExpired(context.Background(), past)
	req.NoError(err)
	req.Equal(1, n)

	got, err := store.GetByID(context.Background(), well.ID)
	req.NoError(err)
	req.Equal(domain.CampaignExpired, got.Status)

	n, err = m.SweepExpired(context.Background(), past)
	req.NoError(err)
	req.Zero(n)
}

func TestSweepLeavesUnexpiredCampaignsOpen(t *testing.T) {
	req := require.New(t)
	m, store, _ := newTestManager(t)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	m.WithClock(func() time.Time { return start })

	well, err := m.Create(context.Background(), validParams("owner-1"))
	req.NoError(err)

	n, err := m.SweepExpired(context.Background(), start.AddDate(0, 0, 7))
	req.NoError(err)
	req.Zero(n)

	got, err := store.GetByID(context.Background(), well.ID)
	req.NoError(err)
	req.Equal(domain.CampaignOpen, got.Status)
}
