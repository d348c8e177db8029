package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-ingest/internal/application"
	"shopify-ingest/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related webhook events
type ProductHandler struct {
	ingestion *application.IngestionService
	logger    zerolog.Logger
}

func NewProductHandler(ingestion *application.IngestionService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		ingestion: ingestion,
		logger:    logger,
	}
}

func (h *ProductHandler) CanHandle(topic string) bool {
	return topic == "products/create" || topic == "products/update"
}

func (h *ProductHandler) Handle(ctx context.Context, tenant *domain.Tenant, event *domain.WebhookEvent) (int, error) {
	var payload goshopify.Product
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return 0, fmt.Errorf("failed to parse product webhook payload: %w", err)
	}

	product, err := h.ingestion.UpsertProduct(ctx, tenant.ID, &payload)
	if err != nil {
		return 0, err
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Str("productId", product.ShopifyID).
		Str("title", product.Title).
		Msg("Product webhook ingested")
	return 1, nil
}
