package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"wellspring/internal/domain"
)

func openCampaign(id, owner, location string, expiresAt time.Time) *domain.Campaign {
	now := time.Now().UTC()
	return &domain.Campaign{
		ID:            id,
		OwnerID:       owner,
		Title:         "Clean water for " + id,
		Description:   "Drill a well",
		Location:      location,
		TargetAmount:  10_000,
		CurrentAmount: 0,
		Status:        domain.CampaignOpen,
		ExpiresAt:     expiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestCreateEnforcesOpenUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	expiry := time.Now().Add(24 * time.Hour)

	if err := store.Create(ctx, openCampaign("well-1", "owner-1", "10.5,20.5", expiry)); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := store.Create(ctx, openCampaign("well-2", "owner-1", "11.5,21.5", expiry))
	if !errors.Is(err, domain.ErrDuplicateCampaign) {
		t.Fatalf("same owner: got %v, want ErrDuplicateCampaign", err)
	}

	err = store.Create(ctx, openCampaign("well-3", "owner-2", "10.5,20.5", expiry))
	if !errors.Is(err, domain.ErrDuplicateLocation) {
		t.Fatalf("same location: got %v, want ErrDuplicateLocation", err)
	}
}

func TestCreateAllowsReuseAfterExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	past := time.Now().Add(-time.Hour)

	if err := store.Create(ctx, openCampaign("well-1", "owner-1", "10.5,20.5", past)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.MarkExpired(ctx, time.Now()); err != nil {
		t.Fatalf("mark expired: %v", err)
	}

	// Owner and location are free again once the first campaign is closed.
	if err := store.Create(ctx, openCampaign("well-2", "owner-1", "10.5,20.5", time.Now().Add(24*time.Hour))); err != nil {
		t.Fatalf("create after expiry: %v", err)
	}
}

func TestMarkExpiredIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Create(ctx, openCampaign("well-1", "owner-1", "10.5,20.5", time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("create: %v", err)
	}

	n, err := store.MarkExpired(ctx, time.Now())
	if err != nil || n != 1 {
		t.Fatalf("first sweep: n=%d err=%v, want 1 nil", n, err)
	}
	n, err = store.MarkExpired(ctx, time.Now())
	if err != nil || n != 0 {
		t.Fatalf("second sweep: n=%d err=%v, want 0 nil", n, err)
	}

	c, err := store.GetByID(ctx, "well-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.Status != domain.CampaignExpired {
		t.Fatalf("status = %s, want %s", c.Status, domain.CampaignExpired)
	}
}

func TestAppendDonationGraceWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	expiry := time.Now().Add(-time.Minute)
	if err := store.Create(ctx, openCampaign("well-1", "owner-1", "10.5,20.5", expiry)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.MarkExpired(ctx, time.Now()); err != nil {
		t.Fatalf("mark expired: %v", err)
	}

	// Authorized before expiry: accepted despite the EXPIRED status.
	d := &domain.Donation{ID: "don-1", CampaignID: "well-1", DonorID: "donor-1", Amount: 100, ChargeID: "ch_1", CreatedAt: time.Now()}
	total, err := store.AppendDonationAndIncrement(ctx, d, expiry.Add(-time.Second))
	if err != nil {
		t.Fatalf("append within grace: %v", err)
	}
	if total != 100 {
		t.Fatalf("total = %d, want 100", total)
	}

	// Authorized after expiry: rejected.
	d2 := &domain.Donation{ID: "don-2", CampaignID: "well-1", DonorID: "donor-2", Amount: 100, ChargeID: "ch_2", CreatedAt: time.Now()}
	_, err = store.AppendDonationAndIncrement(ctx, d2, expiry.Add(time.Second))
	if !errors.Is(err, domain.ErrCampaignNotOpen) {
		t.Fatalf("append after grace: got %v, want ErrCampaignNotOpen", err)
	}
}

func TestAppendDonationConcurrentTotals(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Create(ctx, openCampaign("well-1", "owner-1", "10.5,20.5", time.Now().Add(24*time.Hour))); err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 50
	const perWorker = 20
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				d := &domain.Donation{
					ID:         fmt.Sprintf("don-%d-%d", w, i),
					CampaignID: "well-1",
					DonorID:    fmt.Sprintf("donor-%d", w),
					Amount:     7,
					ChargeID:   fmt.Sprintf("ch-%d-%d", w, i),
					CreatedAt:  time.Now(),
				}
				if _, err := store.AppendDonationAndIncrement(ctx, d, time.Now()); err != nil {
					t.Errorf("append: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	c, err := store.GetByID(ctx, "well-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := int64(workers * perWorker * 7)
	if c.CurrentAmount != want {
		t.Fatalf("current amount = %d, want %d", c.CurrentAmount, want)
	}
	donations, err := store.ListByCampaign(ctx, "well-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(donations) != workers*perWorker {
		t.Fatalf("donations = %d, want %d", len(donations), workers*perWorker)
	}
}
