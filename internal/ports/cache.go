package ports

import (
	"context"

	"shopify-ingest/internal/domain"
)

// TenantCache caches tenant lookups. Get returns (nil, nil) on a miss.
type TenantCache interface {
	Get(ctx context.Context, key string) (*domain.Tenant, error)
	Set(ctx context.Context, key string, tenant *domain.Tenant) error
	Delete(ctx context.Context, keys ...string) error
}

// EncryptionService seals credentials before they are stored
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// CredentialSealer converts tenants between their stored (sealed) and usable (opened) forms
type CredentialSealer interface {
	Seal(tenant *domain.Tenant) (*domain.Tenant, error)
	Open(tenant *domain.Tenant) (*domain.Tenant, error)
}
