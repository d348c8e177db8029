package shopify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteTransport sends every request to the test server regardless of the shop host
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) ports.ShopifyClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	pool := NewClientPool(ClientOptions{
		APIVersion:  "2023-10",
		HTTPTimeout: 5 * time.Second,
		Transport:   rewriteTransport{target: target},
	}, zerolog.Nop())
	c, err := pool.ClientFor(&domain.Tenant{ShopDomain: "demo.myshopify.com", AccessToken: "shpat_test"})
	require.NoError(t, err)
	return c
}

func TestClient_FetchCustomers_Pagination(t *testing.T) {
	var gotQuery url.Values
	var gotToken string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2023-10/customers.json", r.URL.Path)
		gotQuery = r.URL.Query()
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Link", `<https://demo.myshopify.com/admin/api/2023-10/customers.json?limit=10&page_info=abc123>; rel="next"`)
		_, _ = w.Write([]byte(`{"customers":[{"id":1,"email":"a@example.com","first_name":"Ada","last_name":"L"},{"id":2,"email":"b@example.com"}]}`))
	})

	res := c.FetchCustomers(context.Background(), 10, "")
	require.Equal(t, ports.FetchOK, res.Status, "err: %v", res.Err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, uint64(1), res.Items[0].Id)
	assert.Equal(t, "a@example.com", res.Items[0].Email)
	assert.Equal(t, "abc123", res.NextCursor)
	assert.Equal(t, "10", gotQuery.Get("limit"))
	assert.Empty(t, gotQuery.Get("page_info"))
	assert.Equal(t, "shpat_test", gotToken)
}

func TestClient_FetchOrders_StatusOnlyOnFirstPage(t *testing.T) {
	var queries []url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orders":[{"id":1001,"total_price":"100.00","currency":"USD","order_number":1001,"customer":{"id":77}}]}`))
	})

	first := c.FetchOrders(context.Background(), 10, "")
	require.Equal(t, ports.FetchOK, first.Status, "err: %v", first.Err)
	require.Len(t, first.Items, 1)
	assert.Empty(t, first.NextCursor, "no Link header means last page")
	assert.Equal(t, "USD", first.Items[0].Currency)
	require.NotNil(t, first.Items[0].Customer)
	assert.Equal(t, uint64(77), first.Items[0].Customer.Id)

	next := c.FetchOrders(context.Background(), 10, "cursor-2")
	require.Equal(t, ports.FetchOK, next.Status)

	require.Len(t, queries, 2)
	assert.Equal(t, "any", queries[0].Get("status"))
	assert.Empty(t, queries[1].Get("status"))
	assert.Equal(t, "cursor-2", queries[1].Get("page_info"))
}

func TestClient_RateLimited(t *testing.T) {
	tests := []struct {
		name       string
		retryAfter string
		want       time.Duration
	}{
		{"explicit retry-after", "3", 3 * time.Second},
		{"missing retry-after", "", DefaultRetryAfter},
		{"zero retry-after", "0", DefaultRetryAfter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"errors":"Exceeded 2 calls per second for api client."}`))
			})

			res := c.FetchProducts(context.Background(), 10, "p1")
			assert.Equal(t, ports.FetchRateLimited, res.Status)
			assert.Equal(t, tt.want, res.RetryAfter)
			assert.Empty(t, res.Items)
		})
	}
}

func TestClient_Failed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":"[API] Invalid API key or access token"}`))
	})

	res := c.FetchProducts(context.Background(), 10, "")
	assert.Equal(t, ports.FetchFailed, res.Status)
	assert.Error(t, res.Err)
}

func TestClientPool_NilTenant(t *testing.T) {
	pool := NewClientPool(ClientOptions{}, zerolog.Nop())
	_, err := pool.ClientFor(nil)
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}
