// Package cache keeps the campaign listing in Redis so the public listing
// endpoint does not hit Postgres on every request.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"wellspring/internal/domain"
)

const listKey = "wells:list"

// CampaignCache is a read-through cache for the campaign listing. All
// methods are safe on a nil receiver, which disables caching.
type CampaignCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCampaignCache wraps an established Redis client. A nil client yields a
// nil cache.
func NewCampaignCache(client *redis.Client, ttl time.Duration) *CampaignCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CampaignCache{client: client, ttl: ttl}
}

// GetList returns the cached listing and whether it was present.
func (c *CampaignCache) GetList(ctx context.Context) ([]domain.Campaign, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, listKey).Bytes()
	if err != nil {
		return nil, false
	}
	var items []domain.Campaign
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// SetList stores the listing with the configured TTL. Failures are ignored;
// the cache is advisory.
func (c *CampaignCache) SetList(ctx context.Context, items []domain.Campaign) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	c.client.Set(ctx, listKey, raw, c.ttl)
}

// Invalidate drops the cached listing after a write.
func (c *CampaignCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	c.client.Del(ctx, listKey)
}
