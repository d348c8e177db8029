package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/ports"

	"github.com/google/uuid"
)

// MemoryRepository keeps tenants and records in process memory.
// It is used by tests and when STORE_DRIVER=memory.
type MemoryRepository struct {
	mu        sync.Mutex
	tenants   map[string]domain.Tenant   // id -> tenant
	byDomain  map[string]string          // shopDomain -> id
	customers map[recordKey]domain.Customer
	orders    map[recordKey]domain.Order
	products  map[recordKey]domain.Product
	checkouts map[recordKey]domain.Checkout
}

type recordKey struct {
	tenantID  string
	shopifyID string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tenants:   map[string]domain.Tenant{},
		byDomain:  map[string]string{},
		customers: map[recordKey]domain.Customer{},
		orders:    map[recordKey]domain.Order{},
		products:  map[recordKey]domain.Product{},
		checkouts: map[recordKey]domain.Checkout{},
	}
}

var (
	_ ports.TenantRepository = (*MemoryRepository)(nil)
	_ ports.RecordRepository = (*MemoryRepository)(nil)
)

func (m *MemoryRepository) Save(ctx context.Context, tenant *domain.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if id, ok := m.byDomain[tenant.ShopDomain]; ok {
		existing := m.tenants[id]
		existing.AccessToken = tenant.AccessToken
		existing.WebhookSecret = tenant.WebhookSecret
		existing.UpdatedAt = now
		m.tenants[id] = existing
		*tenant = existing
		return nil
	}
	stored := *tenant
	stored.ID = uuid.New().String()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.tenants[stored.ID] = stored
	m.byDomain[stored.ShopDomain] = stored.ID
	*tenant = stored
	return nil
}

func (m *MemoryRepository) FindByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byDomain[shopDomain]
	if !ok {
		return nil, nil
	}
	t := m.tenants[id]
	return &t, nil
}

func (m *MemoryRepository) FindByID(ctx context.Context, id string) (*domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *MemoryRepository) List(ctx context.Context) ([]*domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShopDomain < out[j].ShopDomain })
	return out, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return domain.ErrTenantNotFound
	}
	delete(m.tenants, id)
	delete(m.byDomain, t.ShopDomain)
	return nil
}

func (m *MemoryRepository) UpsertCustomer(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, err := keyOf(c.TenantID, c.ShopifyID)
	if err != nil {
		return nil, err
	}
	rec, ok := m.customers[key]
	if !ok {
		rec = domain.Customer{ID: uuid.New().String(), TenantID: c.TenantID, ShopifyID: c.ShopifyID, CreatedAt: time.Now().UTC()}
	}
	rec.Email, rec.FirstName, rec.LastName = c.Email, c.FirstName, c.LastName
	rec.UpdatedAt = time.Now().UTC()
	m.customers[key] = rec
	return &rec, nil
}

func (m *MemoryRepository) UpsertOrder(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, err := keyOf(o.TenantID, o.ShopifyID)
	if err != nil {
		return nil, err
	}
	rec, ok := m.orders[key]
	if !ok {
		rec = domain.Order{ID: uuid.New().String(), TenantID: o.TenantID, ShopifyID: o.ShopifyID, CreatedAt: time.Now().UTC()}
	}
	rec.TotalPrice, rec.Currency, rec.OrderNumber, rec.CustomerID = o.TotalPrice, o.Currency, o.OrderNumber, o.CustomerID
	rec.UpdatedAt = time.Now().UTC()
	m.orders[key] = rec
	return &rec, nil
}

func (m *MemoryRepository) UpsertProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, err := keyOf(p.TenantID, p.ShopifyID)
	if err != nil {
		return nil, err
	}
	rec, ok := m.products[key]
	if !ok {
		rec = domain.Product{ID: uuid.New().String(), TenantID: p.TenantID, ShopifyID: p.ShopifyID, CreatedAt: time.Now().UTC()}
	}
	rec.Title, rec.Vendor = p.Title, p.Vendor
	rec.UpdatedAt = time.Now().UTC()
	m.products[key] = rec
	return &rec, nil
}

func (m *MemoryRepository) UpsertCheckout(ctx context.Context, c *domain.Checkout) (*domain.Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, err := keyOf(c.TenantID, c.ShopifyID)
	if err != nil {
		return nil, err
	}
	rec, ok := m.checkouts[key]
	if !ok {
		rec = domain.Checkout{ID: uuid.New().String(), TenantID: c.TenantID, ShopifyID: c.ShopifyID, CreatedAt: time.Now().UTC()}
	}
	rec.Token, rec.TotalPrice, rec.Currency = c.Token, c.TotalPrice, c.Currency
	rec.AbandonedCheckoutURL, rec.CompletedAt, rec.SourceUpdatedAt = c.AbandonedCheckoutURL, c.CompletedAt, c.SourceUpdatedAt
	rec.UpdatedAt = time.Now().UTC()
	m.checkouts[key] = rec
	return &rec, nil
}

func keyOf(tenantID, shopifyID string) (recordKey, error) {
	if tenantID == "" || shopifyID == "" {
		return recordKey{}, domain.ErrMissingExternalID
	}
	return recordKey{tenantID: tenantID, shopifyID: shopifyID}, nil
}

// Customers returns the stored customers of a tenant
func (m *MemoryRepository) Customers(tenantID string) []domain.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return collect(m.customers, tenantID)
}

func (m *MemoryRepository) Orders(tenantID string) []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return collect(m.orders, tenantID)
}

func (m *MemoryRepository) Products(tenantID string) []domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return collect(m.products, tenantID)
}

func (m *MemoryRepository) Checkouts(tenantID string) []domain.Checkout {
	m.mu.Lock()
	defer m.mu.Unlock()
	return collect(m.checkouts, tenantID)
}

func collect[T any](records map[recordKey]T, tenantID string) []T {
	keys := make([]recordKey, 0)
	for k := range records {
		if k.tenantID == tenantID {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].shopifyID < keys[j].shopifyID })
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, records[k])
	}
	return out
}
