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

// CustomerHandler upserts customers carried by customer webhooks.
// customers/delete is not claimed: its payload holds only the id.
type CustomerHandler struct {
	ingestion *application.IngestionService
	logger    zerolog.Logger
}

func NewCustomerHandler(ingestion *application.IngestionService, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		ingestion: ingestion,
		logger:    logger,
	}
}

func (h *CustomerHandler) CanHandle(topic string) bool {
	return topic == "customers/create" ||
		topic == "customers/update" ||
		topic == "customers/enable" ||
		topic == "customers/disable"
}

func (h *CustomerHandler) Handle(ctx context.Context, tenant *domain.Tenant, event *domain.WebhookEvent) (int, error) {
	var payload goshopify.Customer
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return 0, fmt.Errorf("failed to parse customer webhook payload: %w", err)
	}

	customer, err := h.ingestion.UpsertCustomer(ctx, tenant.ID, &payload)
	if err != nil {
		return 0, err
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Str("customerId", customer.ShopifyID).
		Msg("Customer webhook ingested")
	return 1, nil
}
