package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
)

func setupOfferCache(t *testing.T) (*OfferCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewOfferCache(client, time.Hour), mr
}

func TestOfferCache_MissOnEmpty(t *testing.T) {
	cache, _ := setupOfferCache(t)

	offers, hit, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, offers)
}

func TestOfferCache_SetAndGet(t *testing.T) {
	cache, _ := setupOfferCache(t)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	offers := []domain.Offer{{
		ID:              "offer-001",
		ProductID:       "prod-001",
		VariantKey:      "1KG",
		DiscountedPrice: 800,
		StartDate:       now,
		EndDate:         now.Add(240 * time.Hour),
		IsActive:        true,
	}}

	require.NoError(t, cache.Set(ctx, offers))

	got, hit, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, got, 1)
	assert.Equal(t, offers[0].ID, got[0].ID)
	assert.Equal(t, offers[0].VariantKey, got[0].VariantKey)
}

func TestOfferCache_EmptyViewIsAHit(t *testing.T) {
	cache, _ := setupOfferCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, nil))

	got, hit, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.True(t, hit, "an empty offer view is still a cached value")
	assert.Empty(t, got)
}

func TestOfferCache_Invalidate(t *testing.T) {
	cache, _ := setupOfferCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, []domain.Offer{{ID: "offer-001"}}))
	require.NoError(t, cache.Invalidate(ctx))

	_, hit, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestOfferCache_SetsTTL(t *testing.T) {
	cache, mr := setupOfferCache(t)

	require.NoError(t, cache.Set(context.Background(), []domain.Offer{{ID: "offer-001"}}))
	assert.Equal(t, time.Hour, mr.TTL(offerCacheKey))
}
