package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"shopify-ingest/internal/application"
	"shopify-ingest/internal/application/webhook_handlers"
	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/infrastructure/repository"
	"shopify-ingest/internal/infrastructure/shopify"
	"shopify-ingest/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// plainSealer marks credentials as sealed without encrypting them
type plainSealer struct{}

func (plainSealer) Seal(t *domain.Tenant) (*domain.Tenant, error) {
	out := *t
	out.AccessToken = "sealed:" + t.AccessToken
	if t.WebhookSecret != "" {
		out.WebhookSecret = "sealed:" + t.WebhookSecret
	}
	return &out, nil
}

func (plainSealer) Open(t *domain.Tenant) (*domain.Tenant, error) {
	out := *t
	out.AccessToken = trimSealed(t.AccessToken)
	out.WebhookSecret = trimSealed(t.WebhookSecret)
	return &out, nil
}

func trimSealed(s string) string {
	const prefix = "sealed:"
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return s
}

// mapCache is an in-process ports.TenantCache
type mapCache struct {
	mu      sync.Mutex
	entries map[string]domain.Tenant
	gets    int
	err     error
}

func newMapCache() *mapCache { return &mapCache{entries: map[string]domain.Tenant{}} }

func (c *mapCache) Get(ctx context.Context, key string) (*domain.Tenant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return nil, c.err
	}
	t, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (c *mapCache) Set(ctx context.Context, key string, t *domain.Tenant) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.entries[key] = *t
	return nil
}

func (c *mapCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

type published struct {
	Subject string
	Data    []byte
	MsgID   string
}

// fakeBus records publishes and can be told to fail
type fakeBus struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (b *fakeBus) Publish(ctx context.Context, subject string, data []byte, msgID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.messages = append(b.messages, published{Subject: subject, Data: append([]byte(nil), data...), MsgID: msgID})
	return nil
}

func (b *fakeBus) all() []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]published(nil), b.messages...)
}

// drain removes and returns the recorded publishes
func (b *fakeBus) drain() []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.messages
	b.messages = nil
	return out
}

type fakeMessage struct {
	subject string
	data    []byte
}

func (m fakeMessage) Subject() string { return m.subject }
func (m fakeMessage) Data() []byte    { return m.data }

func asMessage(p published) ports.Message {
	return fakeMessage{subject: p.Subject, data: p.Data}
}

// fakeShop serves pages keyed by cursor ("" is the first page)
type fakeShop struct {
	mu          sync.Mutex
	customers   map[string]ports.FetchResult[goshopify.Customer]
	orders      map[string]ports.FetchResult[goshopify.Order]
	products    map[string]ports.FetchResult[goshopify.Product]
	rateLimited map[string]int // "resource|cursor" -> remaining 429s
	calls       []string
	tokens      []string
}

func newFakeShop() *fakeShop {
	return &fakeShop{
		customers:   map[string]ports.FetchResult[goshopify.Customer]{},
		orders:      map[string]ports.FetchResult[goshopify.Order]{},
		products:    map[string]ports.FetchResult[goshopify.Product]{},
		rateLimited: map[string]int{},
	}
}

func (s *fakeShop) ClientFor(tenant *domain.Tenant) (ports.ShopifyClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, tenant.AccessToken)
	return s, nil
}

func (s *fakeShop) record(resource, cursor string) (limited bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := resource + "|" + cursor
	s.calls = append(s.calls, key)
	if s.rateLimited[key] > 0 {
		s.rateLimited[key]--
		return true
	}
	return false
}

func (s *fakeShop) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func fakePage[T any](pages map[string]ports.FetchResult[T], cursor string, limited bool) ports.FetchResult[T] {
	if limited {
		return ports.FetchResult[T]{Status: ports.FetchRateLimited, RetryAfter: 3 * time.Second}
	}
	page, ok := pages[cursor]
	if !ok {
		return ports.FetchResult[T]{Status: ports.FetchFailed, Err: fmt.Errorf("unexpected cursor %q", cursor)}
	}
	return page
}

func (s *fakeShop) FetchCustomers(ctx context.Context, pageSize int, cursor string) ports.FetchResult[goshopify.Customer] {
	return fakePage(s.customers, cursor, s.record("customers", cursor))
}

func (s *fakeShop) FetchOrders(ctx context.Context, pageSize int, cursor string) ports.FetchResult[goshopify.Order] {
	return fakePage(s.orders, cursor, s.record("orders", cursor))
}

func (s *fakeShop) FetchProducts(ctx context.Context, pageSize int, cursor string) ports.FetchResult[goshopify.Product] {
	return fakePage(s.products, cursor, s.record("products", cursor))
}

// failingRecords fails every upsert
type failingRecords struct{ *repository.MemoryRepository }

var errStoreDown = errors.New("store unavailable")

func (failingRecords) UpsertOrder(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	return nil, errStoreDown
}

// eventSink collects ingestion events
type eventSink struct {
	mu     sync.Mutex
	events []domain.IngestionEvent
}

func (s *eventSink) Publish(e *domain.IngestionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *e)
}

// harness wires the application services over in-memory infrastructure
type harness struct {
	repo       *repository.MemoryRepository
	cache      *mapCache
	bus        *fakeBus
	shop       *fakeShop
	sink       *eventSink
	tenants    *application.TenantService
	ingestion  *application.IngestionService
	intake     *application.WebhookIntakeService
	sync       *application.SyncService
	dispatcher *application.Dispatcher
}

const defaultSecret = "default-secret"

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithRecords(t, nil)
}

func newHarnessWithRecords(t *testing.T, records ports.RecordRepository) *harness {
	t.Helper()
	logger := zerolog.Nop()
	h := &harness{
		repo:  repository.NewMemoryRepository(),
		cache: newMapCache(),
		bus:   &fakeBus{},
		shop:  newFakeShop(),
		sink:  &eventSink{},
	}
	if records == nil {
		records = h.repo
	}
	h.tenants = application.NewTenantService(h.repo, h.cache, plainSealer{}, logger)
	h.ingestion = application.NewIngestionService(records, logger)
	h.intake = application.NewWebhookIntakeService(h.tenants, h.bus, shopify.NewWebhookVerifier(), defaultSecret, logger)
	h.sync = application.NewSyncService(h.tenants, h.bus, logger)
	h.dispatcher = application.NewDispatcher(h.tenants, h.shop, h.ingestion, h.bus, 10, logger)
	h.dispatcher.RegisterHandler(webhook_handlers.NewCustomerHandler(h.ingestion, logger))
	h.dispatcher.RegisterHandler(webhook_handlers.NewOrderHandler(h.ingestion, logger))
	h.dispatcher.RegisterHandler(webhook_handlers.NewProductHandler(h.ingestion, logger))
	h.dispatcher.RegisterHandler(webhook_handlers.NewCheckoutHandler(h.ingestion, logger))
	h.dispatcher.AddEventPublisher(h.sink)
	return h
}

func (h *harness) onboard(t *testing.T, shopDomain, secret string) *domain.Tenant {
	t.Helper()
	tenant, err := h.tenants.Onboard(context.Background(), application.OnboardInput{
		ShopDomain:    shopDomain,
		AccessToken:   "shpat_" + shopDomain,
		WebhookSecret: secret,
	})
	require.NoError(t, err)
	return tenant
}

// webhookMessage builds the bus message the intake endpoint would publish
func webhookMessage(t *testing.T, shopDomain, topic string, payload string) ports.Message {
	t.Helper()
	body, err := json.Marshal(domain.WebhookEvent{ShopDomain: shopDomain, Topic: topic, Data: json.RawMessage(payload)})
	require.NoError(t, err)
	return fakeMessage{subject: domain.WebhookSubject(shopDomain, topic), data: body}
}

func syncMessage(t *testing.T, tenantID string, resource domain.Resource, cursor string) ports.Message {
	t.Helper()
	status := domain.SyncStatusStart
	if cursor != "" {
		status = domain.SyncStatusProcessing
	}
	body, err := json.Marshal(domain.SyncJob{Status: status, Cursor: cursor})
	require.NoError(t, err)
	return fakeMessage{subject: domain.SyncSubject(tenantID, resource), data: body}
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func testLogger() zerolog.Logger { return zerolog.Nop() }
