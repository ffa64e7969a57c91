package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"wellspring/internal/ledger"
)

// One hundred concurrent donations of 10 against one campaign must raise
// the total by exactly 1000: no lost updates, and the stored donations must
// always sum to the running total.
func TestConcurrentDonationsPreserveLedgerInvariant(t *testing.T) {
	req := require.New(t)
	store := ledger.NewMemoryStore()
	openCampaign(t, store)
	p := newTestPipeline(store, &chargingGateway{}, nil)

	const donors = 100
	var wg sync.WaitGroup
	errs := make(chan error, donors)
	for i := 0; i < donors; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Donate(context.Background(), donateParams(10, ""))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	well, err := store.GetByID(context.Background(), "well-1")
	req.NoError(err)
	req.Equal(int64(1000), well.CurrentAmount)

	donations, err := store.ListByCampaign(context.Background(), "well-1")
	req.NoError(err)
	req.Len(donations, donors)
	var sum int64
	for _, d := range donations {
		sum += d.Amount
	}
	req.Equal(well.CurrentAmount, sum)
}

// Donations to different campaigns must not serialize on a shared lock.
// This is a liveness smoke test: both campaigns settle all donations.
func TestConcurrentDonationsAcrossCampaigns(t *testing.T) {
	req := require.New(t)
	store := ledger.NewMemoryStore()
	first := openCampaign(t, store)
	second := *first
	second.ID = "well-2"
	second.OwnerID = "owner-2"
	second.Location = "10.1,3.2"
	req.NoError(store.Create(context.Background(), &second))

	p := newTestPipeline(store, &chargingGateway{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, id := range []string{"well-1", "well-2"} {
			wg.Add(1)
			go func(campaignID string) {
				defer wg.Done()
				params := donateParams(10, "")
				params.CampaignID = campaignID
				_, err := p.Donate(context.Background(), params)
				require.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	for _, id := range []string{"well-1", "well-2"} {
		well, err := store.GetByID(context.Background(), id)
		req.NoError(err)
		req.Equal(int64(500), well.CurrentAmount, "campaign %s", id)
	}
}
