// Package cache keeps tenant lookups off the database on the hot path.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "shopify-ingest:tenant:"

// cachedTenant mirrors domain.Tenant including the sealed credentials,
// which the domain type hides from JSON.
type cachedTenant struct {
	ID            string    `json:"id"`
	ShopDomain    string    `json:"shopDomain"`
	AccessToken   string    `json:"accessToken"`
	WebhookSecret string    `json:"webhookSecret,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RedisTenantCache implements ports.TenantCache on Redis
type RedisTenantCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.TenantCache = (*RedisTenantCache)(nil)

func NewRedisTenantCache(client *redis.Client, ttl time.Duration) *RedisTenantCache {
	return &RedisTenantCache{client: client, ttl: ttl}
}

func (c *RedisTenantCache) Get(ctx context.Context, key string) (*domain.Tenant, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached tenant: %w", err)
	}
	var ct cachedTenant
	if err := json.Unmarshal(raw, &ct); err != nil {
		return nil, fmt.Errorf("failed to decode cached tenant: %w", err)
	}
	return &domain.Tenant{
		ID:            ct.ID,
		ShopDomain:    ct.ShopDomain,
		AccessToken:   ct.AccessToken,
		WebhookSecret: ct.WebhookSecret,
		CreatedAt:     ct.CreatedAt,
		UpdatedAt:     ct.UpdatedAt,
	}, nil
}

func (c *RedisTenantCache) Set(ctx context.Context, key string, tenant *domain.Tenant) error {
	raw, err := json.Marshal(cachedTenant{
		ID:            tenant.ID,
		ShopDomain:    tenant.ShopDomain,
		AccessToken:   tenant.AccessToken,
		WebhookSecret: tenant.WebhookSecret,
		CreatedAt:     tenant.CreatedAt,
		UpdatedAt:     tenant.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode tenant: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache tenant: %w", err)
	}
	return nil
}

func (c *RedisTenantCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyPrefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to evict tenant: %w", err)
	}
	return nil
}

// NoopTenantCache is used when REDIS_URL is not set
type NoopTenantCache struct{}

var _ ports.TenantCache = NoopTenantCache{}

func (NoopTenantCache) Get(context.Context, string) (*domain.Tenant, error) { return nil, nil }
func (NoopTenantCache) Set(context.Context, string, *domain.Tenant) error { return nil }
func (NoopTenantCache) Delete(context.Context, ...string) error { return nil }
