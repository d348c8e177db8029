package application

import (
	"context"
	"errors"
	"fmt"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/ports"

	"github.com/rs/zerolog"
)

// TenantService resolves, onboards and removes tenants.
// Lookups go through the cache; credentials are sealed at rest and opened on the way out.
type TenantService struct {
	repo   ports.TenantRepository
	cache  ports.TenantCache
	sealer ports.CredentialSealer
	logger zerolog.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(
	repo ports.TenantRepository,
	cache ports.TenantCache,
	sealer ports.CredentialSealer,
	logger zerolog.Logger,
) *TenantService {
	return &TenantService{
		repo:   repo,
		cache:  cache,
		sealer: sealer,
		logger: logger,
	}
}

func domainKey(shopDomain string) string { return "domain:" + shopDomain }
func idKey(id string) string             { return "id:" + id }

// FindByDomain returns the opened tenant for a shop domain or domain.ErrTenantNotFound
func (s *TenantService) FindByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	shopDomain = domain.NormalizeShopDomain(shopDomain)
	return s.lookup(ctx, domainKey(shopDomain), func(ctx context.Context) (*domain.Tenant, error) {
		return s.repo.FindByDomain(ctx, shopDomain)
	})
}

// FindByID returns the opened tenant for an id or domain.ErrTenantNotFound
func (s *TenantService) FindByID(ctx context.Context, id string) (*domain.Tenant, error) {
	return s.lookup(ctx, idKey(id), func(ctx context.Context) (*domain.Tenant, error) {
		return s.repo.FindByID(ctx, id)
	})
}

func (s *TenantService) lookup(ctx context.Context, key string, load func(context.Context) (*domain.Tenant, error)) (*domain.Tenant, error) {
	stored, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Tenant cache unavailable, falling back to store")
	}

	if stored == nil {
		stored, err = load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to find tenant: %w", err)
		}
		if stored == nil {
			return nil, domain.ErrTenantNotFound
		}
		s.remember(ctx, stored)
	}

	opened, err := s.sealer.Open(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to open tenant credentials: %w", err)
	}
	return opened, nil
}

func (s *TenantService) remember(ctx context.Context, stored *domain.Tenant) {
	for _, key := range []string{domainKey(stored.ShopDomain), idKey(stored.ID)} {
		if err := s.cache.Set(ctx, key, stored); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache tenant")
			return
		}
	}
}

func (s *TenantService) forget(ctx context.Context, tenant *domain.Tenant) {
	if err := s.cache.Delete(ctx, domainKey(tenant.ShopDomain), idKey(tenant.ID)); err != nil {
		s.logger.Warn().Err(err).Str("shop", tenant.ShopDomain).Msg("Failed to evict tenant from cache")
	}
}

// OnboardInput is the administrative request to create or update a tenant
type OnboardInput struct {
	ShopDomain    string
	AccessToken   string
	WebhookSecret string
}

// Onboard creates a tenant or replaces the credentials of an existing one.
// The returned tenant carries no credentials.
func (s *TenantService) Onboard(ctx context.Context, input OnboardInput) (*domain.Tenant, error) {
	tenant, err := domain.NewTenant(input.ShopDomain, input.AccessToken, input.WebhookSecret)
	if err != nil {
		return nil, err
	}

	sealed, err := s.sealer.Seal(tenant)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sealed); err != nil {
		return nil, err
	}
	s.forget(ctx, sealed)

	s.logger.Info().
		Str("shop", sealed.ShopDomain).
		Str("tenantId", sealed.ID).
		Msg("Tenant onboarded")

	return redact(sealed), nil
}

// List returns all tenants without credentials
func (s *TenantService) List(ctx context.Context) ([]*domain.Tenant, error) {
	tenants, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Tenant, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, redact(t))
	}
	return out, nil
}

// Delete removes a tenant; records already ingested for it are kept
func (s *TenantService) Delete(ctx context.Context, id string) error {
	stored, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find tenant: %w", err)
	}
	if stored == nil {
		return domain.ErrTenantNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.forget(ctx, stored)
	s.logger.Info().Str("shop", stored.ShopDomain).Str("tenantId", id).Msg("Tenant deleted")
	return nil
}

// EnsureTenant makes sure the tenant configured at startup exists.
// An existing tenant is left untouched.
func (s *TenantService) EnsureTenant(ctx context.Context, shopDomain, accessToken string) (*domain.Tenant, error) {
	existing, err := s.FindByDomain(ctx, shopDomain)
	if err == nil {
		s.logger.Info().Str("shop", existing.ShopDomain).Str("tenantId", existing.ID).Msg("Tenant found")
		return redact(existing), nil
	}
	if !errors.Is(err, domain.ErrTenantNotFound) {
		return nil, err
	}
	return s.Onboard(ctx, OnboardInput{ShopDomain: shopDomain, AccessToken: accessToken})
}

func redact(t *domain.Tenant) *domain.Tenant {
	out := *t
	out.AccessToken = ""
	out.WebhookSecret = ""
	return &out
}
