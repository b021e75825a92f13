package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
)

const offerCacheKey = "offers:in-effect"

// OfferCache implements repository.OfferCache using Redis. It holds the
// in-effect offer view between offer writes; every write invalidates it so
// storefront reads never see a retired discount past the TTL of the key.
type OfferCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOfferCache creates a Redis-backed offer view cache.
func NewOfferCache(client *redis.Client, ttl time.Duration) *OfferCache {
	return &OfferCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached offers and whether the cache held a value.
func (c *OfferCache) Get(ctx context.Context) ([]domain.Offer, bool, error) {
	data, err := c.client.Get(ctx, offerCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get offers: %w", err)
	}

	var offers []domain.Offer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached offers: %w", err)
	}

	return offers, true, nil
}

// Set stores the in-effect offer view with the configured TTL.
func (c *OfferCache) Set(ctx context.Context, offers []domain.Offer) error {
	if offers == nil {
		offers = []domain.Offer{}
	}

	data, err := json.Marshal(offers)
	if err != nil {
		return fmt.Errorf("marshal offers: %w", err)
	}

	if err := c.client.Set(ctx, offerCacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set offers: %w", err)
	}

	return nil
}

// Invalidate drops the cached view.
func (c *OfferCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, offerCacheKey).Err(); err != nil {
		return fmt.Errorf("redis del offers: %w", err)
	}
	return nil
}
