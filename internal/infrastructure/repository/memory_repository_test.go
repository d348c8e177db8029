package repository

import (
	"context"
	"testing"

	"shopify-ingest/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_TenantLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	tenant := &domain.Tenant{ShopDomain: "demo.myshopify.com", AccessToken: "sealed-1"}
	require.NoError(t, repo.Save(ctx, tenant))
	require.NotEmpty(t, tenant.ID)
	firstID := tenant.ID

	// saving the same domain updates in place
	again := &domain.Tenant{ShopDomain: "demo.myshopify.com", AccessToken: "sealed-2", WebhookSecret: "s"}
	require.NoError(t, repo.Save(ctx, again))
	assert.Equal(t, firstID, again.ID)

	found, err := repo.FindByDomain(ctx, "demo.myshopify.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "sealed-2", found.AccessToken)

	byID, err := repo.FindByID(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, found, byID)

	missing, err := repo.FindByDomain(ctx, "other.myshopify.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, firstID))
	assert.ErrorIs(t, repo.Delete(ctx, firstID), domain.ErrTenantNotFound)
}

func TestMemoryRepository_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	first, err := repo.UpsertProduct(ctx, &domain.Product{TenantID: "t1", ShopifyID: "9", Title: "Hat", Vendor: "Acme"})
	require.NoError(t, err)
	second, err := repo.UpsertProduct(ctx, &domain.Product{TenantID: "t1", ShopifyID: "9", Title: "Cap", Vendor: "Acme"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	products := repo.Products("t1")
	require.Len(t, products, 1)
	assert.Equal(t, "Cap", products[0].Title)
}

func TestMemoryRepository_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.UpsertCustomer(ctx, &domain.Customer{TenantID: "a", ShopifyID: "1", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = repo.UpsertCustomer(ctx, &domain.Customer{TenantID: "b", ShopifyID: "1", Email: "b@example.com"})
	require.NoError(t, err)

	require.Len(t, repo.Customers("a"), 1)
	require.Len(t, repo.Customers("b"), 1)
	assert.Equal(t, "a@example.com", repo.Customers("a")[0].Email)
	assert.Equal(t, "b@example.com", repo.Customers("b")[0].Email)
}

func TestMemoryRepository_MissingID(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.UpsertOrder(context.Background(), &domain.Order{TenantID: "t1"})
	assert.ErrorIs(t, err, domain.ErrMissingExternalID)
}
