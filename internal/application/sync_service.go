package application

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/ports"

	"github.com/rs/zerolog"
)

// SyncService starts backfills by seeding one job per sync resource
type SyncService struct {
	tenants   *TenantService
	publisher ports.Publisher
	logger    zerolog.Logger
}

func NewSyncService(tenants *TenantService, publisher ports.Publisher, logger zerolog.Logger) *SyncService {
	return &SyncService{
		tenants:   tenants,
		publisher: publisher,
		logger:    logger,
	}
}

// Start publishes a start job for customers, orders and products of the shop's tenant.
// Every job begins at the first page; pagination continues on the bus.
func (s *SyncService) Start(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	tenant, err := s.tenants.FindByDomain(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(domain.SyncJob{Status: domain.SyncStatusStart})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sync job: %w", err)
	}
	for _, resource := range domain.SyncResources {
		subject := domain.SyncSubject(tenant.ID, resource)
		if err := s.publisher.Publish(ctx, subject, body, ""); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("shop", tenant.ShopDomain).
		Str("tenantId", tenant.ID).
		Msg("Sync started")
	return redact(tenant), nil
}
