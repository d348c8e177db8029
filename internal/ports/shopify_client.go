package ports

import (
	"context"
	"time"

	"shopify-ingest/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// FetchStatus is the outcome of fetching one page from the Shopify API
type FetchStatus int

const (
	FetchOK FetchStatus = iota
	FetchRateLimited
	FetchFailed
)

func (s FetchStatus) String() string {
	switch s {
	case FetchOK:
		return "ok"
	case FetchRateLimited:
		return "rate_limited"
	default:
		return "failed"
	}
}

// FetchResult is one page of a paginated list call.
// FetchOK carries Items and NextCursor (empty on the last page),
// FetchRateLimited carries RetryAfter, FetchFailed carries Err.
type FetchResult[T any] struct {
	Status     FetchStatus
	Items      []T
	NextCursor string
	RetryAfter time.Duration
	Err        error
}

// ShopifyClient fetches pages of resources for one shop
type ShopifyClient interface {
	FetchCustomers(ctx context.Context, pageSize int, cursor string) FetchResult[goshopify.Customer]
	FetchOrders(ctx context.Context, pageSize int, cursor string) FetchResult[goshopify.Order]
	FetchProducts(ctx context.Context, pageSize int, cursor string) FetchResult[goshopify.Product]
}

// ShopifyClientPool hands out clients bound to a tenant's shop and credential
type ShopifyClientPool interface {
	ClientFor(tenant *domain.Tenant) (ShopifyClient, error)
}

// WebhookVerifier authenticates a webhook body against a shared secret
type WebhookVerifier interface {
	Verify(rawBody []byte, signature string, secret string) bool
}
