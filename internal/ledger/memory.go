// Package ledger provides an in-memory implementation of the store
// contracts, used for tests and for running the API without Postgres.
package ledger

import (
	"context"
	"sync"
	"time"

	"wellspring/internal/domain"
)

// MemoryStore keeps campaigns, donations, messages and reconciliation
// records in process memory. The append+increment step serializes on a
// per-campaign mutex so donations to the same campaign cannot race, while
// donations to different campaigns do not contend.
type MemoryStore struct {
	mu        sync.RWMutex
	campaigns map[string]*domain.Campaign
	donations map[string][]domain.Donation
	messages  map[string][]domain.Message
	recs      []domain.Reconciliation

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		campaigns: make(map[string]*domain.Campaign),
		donations: make(map[string][]domain.Donation),
		messages:  make(map[string][]domain.Message),
		locks:     make(map[string]*sync.Mutex),
	}
}

func (s *MemoryStore) campaignLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Create persists a new campaign, enforcing the one-open-campaign-per-owner
// and unique-open-location rules.
func (s *MemoryStore) Create(ctx context.Context, campaign *domain.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.campaigns {
		if !existing.IsOpen() {
			continue
		}
		if existing.OwnerID == campaign.OwnerID {
			return domain.ErrDuplicateCampaign
		}
		if existing.Location == campaign.Location {
			return domain.ErrDuplicateLocation
		}
	}
	clone := *campaign
	s.campaigns[campaign.ID] = &clone
	return nil
}

// GetByID returns a copy of the campaign.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	clone := *c
	return &clone, nil
}

// List returns all campaigns.
func (s *MemoryStore) List(ctx context.Context) ([]domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		out = append(out, *c)
	}
	return out, nil
}

// FindOpenByOwner returns the owner's open campaign, if any.
func (s *MemoryStore) FindOpenByOwner(ctx context.Context, ownerID string) (*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.campaigns {
		if c.IsOpen() && c.OwnerID == ownerID {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrCampaignNotFound
}

// FindOpenByLocation returns the open campaign claiming the location, if any.
func (s *MemoryStore) FindOpenByLocation(ctx context.Context, location string) (*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.campaigns {
		if c.IsOpen() && c.Location == location {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrCampaignNotFound
}

// MarkExpired transitions open campaigns past their expiry to EXPIRED.
func (s *MemoryStore) MarkExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.campaigns {
		if c.IsOpen() && now.After(c.ExpiresAt) {
			c.Status = domain.CampaignExpired
			c.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// AppendDonationAndIncrement records the donation and bumps the campaign
// total under the campaign's mutex. A campaign that expired after the
// charge was authorized still accepts the donation.
func (s *MemoryStore) AppendDonationAndIncrement(ctx context.Context, donation *domain.Donation, authorizedAt time.Time) (int64, error) {
	lock := s.campaignLock(donation.CampaignID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[donation.CampaignID]
	if !ok {
		return 0, domain.ErrCampaignNotFound
	}
	if !c.AcceptsChargeAuthorizedAt(authorizedAt) {
		return 0, domain.ErrCampaignNotOpen
	}
	s.donations[donation.CampaignID] = append(s.donations[donation.CampaignID], *donation)
	c.CurrentAmount += donation.Amount
	c.UpdatedAt = donation.CreatedAt
	return c.CurrentAmount, nil
}

// ListByCampaign returns the campaign's donations.
func (s *MemoryStore) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Donation, len(s.donations[campaignID]))
	copy(out, s.donations[campaignID])
	return out, nil
}

// CreateMessage persists a donor message.
func (s *MemoryStore) CreateMessage(ctx context.Context, message *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[message.CampaignID] = append(s.messages[message.CampaignID], *message)
	return nil
}

// ListMessagesByCampaign returns the campaign's messages.
func (s *MemoryStore) ListMessagesByCampaign(ctx context.Context, campaignID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Message, len(s.messages[campaignID]))
	copy(out, s.messages[campaignID])
	return out, nil
}

// AppendReconciliation records a charge the ledger could not absorb.
func (s *MemoryStore) AppendReconciliation(ctx context.Context, rec *domain.Reconciliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, *rec)
	return nil
}

// ListUnresolvedReconciliations returns pending reconciliation records.
func (s *MemoryStore) ListUnresolvedReconciliations(ctx context.Context, limit int) ([]domain.Reconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Reconciliation
	for _, r := range s.recs {
		if r.Resolved {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Messages adapts the store to the message contract.
func (s *MemoryStore) Messages() domain.MessageStore { return memoryMessages{s} }

// Reconciliations adapts the store to the reconciliation contract.
func (s *MemoryStore) Reconciliations() domain.ReconciliationStore { return memoryRecs{s} }

type memoryMessages struct{ s *MemoryStore }

func (m memoryMessages) Create(ctx context.Context, message *domain.Message) error {
	return m.s.CreateMessage(ctx, message)
}

func (m memoryMessages) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Message, error) {
	return m.s.ListMessagesByCampaign(ctx, campaignID)
}

type memoryRecs struct{ s *MemoryStore }

func (m memoryRecs) Append(ctx context.Context, rec *domain.Reconciliation) error {
	return m.s.AppendReconciliation(ctx, rec)
}

func (m memoryRecs) ListUnresolved(ctx context.Context, limit int) ([]domain.Reconciliation, error) {
	return m.s.ListUnresolvedReconciliations(ctx, limit)
}

var (
	_ domain.CampaignStore = (*MemoryStore)(nil)
	_ domain.DonationStore = (*MemoryStore)(nil)
)
