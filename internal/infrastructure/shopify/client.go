package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// DefaultRetryAfter is used when a 429 response carries no usable Retry-After
const DefaultRetryAfter = 2 * time.Second

// listOptions is encoded into the query string by go-shopify.
// Shopify rejects filters other than limit next to page_info, so Status is only
// set on the first page.
type listOptions struct {
	Limit    int    `url:"limit,omitempty"`
	PageInfo string `url:"page_info,omitempty"`
	Status   string `url:"status,omitempty"`
}

// ClientOptions configures the clients handed out by a ClientPool
type ClientOptions struct {
	APIVersion  string
	HTTPTimeout time.Duration
	Transport   http.RoundTripper
	RateLimiter *RateLimiter
}

// ClientPool creates Shopify clients bound to a tenant's shop and access token
type ClientPool struct {
	app        goshopify.App
	opts       ClientOptions
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClientPool creates a pool. All clients share one http.Client with a finite timeout.
func NewClientPool(opts ClientOptions, logger zerolog.Logger) *ClientPool {
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 30 * time.Second
	}
	return &ClientPool{
		opts: opts,
		httpClient: &http.Client{
			Timeout:   opts.HTTPTimeout,
			Transport: opts.Transport,
		},
		logger: logger,
	}
}

// ClientFor returns a client for the tenant. The tenant's access token must already be opened.
func (p *ClientPool) ClientFor(tenant *domain.Tenant) (ports.ShopifyClient, error) {
	if tenant == nil {
		return nil, fmt.Errorf("failed to create client: %w", domain.ErrTenantNotFound)
	}
	clientOpts := []goshopify.Option{goshopify.WithHTTPClient(p.httpClient)}
	if p.opts.APIVersion != "" {
		clientOpts = append(clientOpts, goshopify.WithVersion(p.opts.APIVersion))
	}
	api, err := goshopify.NewClient(p.app, tenant.ShopDomain, tenant.AccessToken, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &client{
		shop:        tenant.ShopDomain,
		api:         api,
		rateLimiter: p.opts.RateLimiter,
		logger:      p.logger.With().Str("shop", tenant.ShopDomain).Logger(),
	}, nil
}

type client struct {
	shop        string
	api         *goshopify.Client
	rateLimiter *RateLimiter
	logger      zerolog.Logger
}

func (c *client) FetchCustomers(ctx context.Context, pageSize int, cursor string) ports.FetchResult[goshopify.Customer] {
	return fetchPage(ctx, c, "customers", c.api.Customer.ListWithPagination, pageOptions(pageSize, cursor, ""))
}

func (c *client) FetchOrders(ctx context.Context, pageSize int, cursor string) ports.FetchResult[goshopify.Order] {
	return fetchPage(ctx, c, "orders", c.api.Order.ListWithPagination, pageOptions(pageSize, cursor, "any"))
}

func (c *client) FetchProducts(ctx context.Context, pageSize int, cursor string) ports.FetchResult[goshopify.Product] {
	return fetchPage(ctx, c, "products", c.api.Product.ListWithPagination, pageOptions(pageSize, cursor, ""))
}

func pageOptions(pageSize int, cursor, status string) listOptions {
	opts := listOptions{Limit: pageSize, PageInfo: cursor}
	if cursor == "" {
		opts.Status = status
	}
	return opts
}

type listFunc[T any] func(ctx context.Context, options interface{}) ([]T, *goshopify.Pagination, error)

func fetchPage[T any](ctx context.Context, c *client, resource string, list listFunc[T], opts listOptions) ports.FetchResult[T] {
	if err := c.rateLimiter.Wait(ctx, c.shop); err != nil {
		return ports.FetchResult[T]{Status: ports.FetchFailed, Err: fmt.Errorf("failed to wait for rate limiter: %w", err)}
	}

	items, pagination, err := list(ctx, opts)
	if err != nil {
		if retryAfter, limited := rateLimited(err); limited {
			c.logger.Warn().
				Str("resource", resource).
				Dur("retryAfter", retryAfter).
				Msg("Shopify rate limit hit")
			return ports.FetchResult[T]{Status: ports.FetchRateLimited, RetryAfter: retryAfter, Err: err}
		}
		return ports.FetchResult[T]{Status: ports.FetchFailed, Err: fmt.Errorf("failed to list %s: %w", resource, err)}
	}

	next := ""
	if pagination != nil && pagination.NextPageOptions != nil {
		next = pagination.NextPageOptions.PageInfo
	}

	c.logger.Debug().
		Str("resource", resource).
		Int("count", len(items)).
		Bool("hasNext", next != "").
		Msg("Fetched page")

	return ports.FetchResult[T]{Status: ports.FetchOK, Items: items, NextCursor: next}
}

// rateLimited reports whether err is a 429 and how long to wait before retrying
func rateLimited(err error) (time.Duration, bool) {
	var rle goshopify.RateLimitError
	if errors.As(err, &rle) {
		return retryAfter(rle.RetryAfter), true
	}
	var rlePtr *goshopify.RateLimitError
	if errors.As(err, &rlePtr) && rlePtr != nil {
		return retryAfter(rlePtr.RetryAfter), true
	}
	var re goshopify.ResponseError
	if errors.As(err, &re) && re.Status == http.StatusTooManyRequests {
		return DefaultRetryAfter, true
	}
	return 0, false
}

func retryAfter(seconds int) time.Duration {
	if seconds <= 0 {
		return DefaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}
