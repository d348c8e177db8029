package application

import (
	"context"
	"fmt"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// IngestionService maps Shopify payloads to canonical records and upserts them
type IngestionService struct {
	records ports.RecordRepository
	logger  zerolog.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(records ports.RecordRepository, logger zerolog.Logger) *IngestionService {
	return &IngestionService{
		records: records,
		logger:  logger,
	}
}

func (s *IngestionService) UpsertCustomer(ctx context.Context, tenantID string, payload *goshopify.Customer) (*domain.Customer, error) {
	customer, err := MapCustomer(tenantID, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to map customer: %w", err)
	}
	saved, err := s.records.UpsertCustomer(ctx, customer)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("tenantId", tenantID).Str("shopifyId", saved.ShopifyID).Msg("Customer upserted")
	return saved, nil
}

func (s *IngestionService) UpsertOrder(ctx context.Context, tenantID string, payload *goshopify.Order) (*domain.Order, error) {
	order, err := MapOrder(tenantID, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to map order: %w", err)
	}
	saved, err := s.records.UpsertOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("tenantId", tenantID).Str("shopifyId", saved.ShopifyID).Msg("Order upserted")
	return saved, nil
}

func (s *IngestionService) UpsertProduct(ctx context.Context, tenantID string, payload *goshopify.Product) (*domain.Product, error) {
	product, err := MapProduct(tenantID, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to map product: %w", err)
	}
	saved, err := s.records.UpsertProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("tenantId", tenantID).Str("shopifyId", saved.ShopifyID).Msg("Product upserted")
	return saved, nil
}

func (s *IngestionService) UpsertCheckout(ctx context.Context, tenantID string, payload *domain.CheckoutPayload) (*domain.Checkout, error) {
	checkout, err := MapCheckout(tenantID, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to map checkout: %w", err)
	}
	saved, err := s.records.UpsertCheckout(ctx, checkout)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("tenantId", tenantID).Str("shopifyId", saved.ShopifyID).Msg("Checkout upserted")
	return saved, nil
}
