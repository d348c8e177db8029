package ports

import (
	"context"

	"shopify-ingest/internal/domain"
)

// TenantRepository defines the interface for tenant persistence.
// Find methods return (nil, nil) when no tenant matches.
type TenantRepository interface {
	FindByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error)
	FindByID(ctx context.Context, id string) (*domain.Tenant, error)
	// Save creates or updates a tenant keyed by shop domain and sets its ID
	Save(ctx context.Context, tenant *domain.Tenant) error
	List(ctx context.Context) ([]*domain.Tenant, error)
	// Delete removes a tenant; it returns domain.ErrTenantNotFound when nothing was deleted
	Delete(ctx context.Context, id string) error
}

// RecordRepository is the idempotent write path for ingested records.
// Every upsert is keyed by (TenantID, ShopifyID): the first write creates the
// record, later writes merge the mapped fields into it.
type RecordRepository interface {
	UpsertCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	UpsertOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	UpsertProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpsertCheckout(ctx context.Context, checkout *domain.Checkout) (*domain.Checkout, error)
}
