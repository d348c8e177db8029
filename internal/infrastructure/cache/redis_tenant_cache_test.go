package cache

import (
	"context"
	"testing"
	"time"

	"shopify-ingest/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisTenantCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTenantCache(client, time.Minute), mr
}

func TestRedisTenantCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	miss, err := c.Get(ctx, "domain:demo.myshopify.com")
	require.NoError(t, err)
	assert.Nil(t, miss)

	tenant := &domain.Tenant{ID: "t1", ShopDomain: "demo.myshopify.com", AccessToken: "sealed", WebhookSecret: "sealed-secret"}
	require.NoError(t, c.Set(ctx, "domain:"+tenant.ShopDomain, tenant))

	got, err := c.Get(ctx, "domain:demo.myshopify.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "sealed", got.AccessToken)
	assert.Equal(t, "sealed-secret", got.WebhookSecret)

	require.NoError(t, c.Delete(ctx, "domain:"+tenant.ShopDomain, "id:"+tenant.ID))
	got, err = c.Get(ctx, "domain:demo.myshopify.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisTenantCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, "id:t1", &domain.Tenant{ID: "t1", ShopDomain: "demo.myshopify.com"}))
	mr.FastForward(2 * time.Minute)

	got, err := c.Get(ctx, "id:t1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisTenantCache_Unavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.Get(context.Background(), "id:t1")
	assert.Error(t, err)
}
