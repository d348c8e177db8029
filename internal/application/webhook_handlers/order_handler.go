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

// OrderHandler upserts orders carried by order webhooks
type OrderHandler struct {
	ingestion *application.IngestionService
	logger    zerolog.Logger
}

// NewOrderHandler creates a new order webhook handler
func NewOrderHandler(ingestion *application.IngestionService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		ingestion: ingestion,
		logger:    logger,
	}
}

// CanHandle returns true if this handler can process the given topic.
// orders/edited carries an order_edit body, not an order, and is left unclaimed.
func (h *OrderHandler) CanHandle(topic string) bool {
	return topic == "orders/create" ||
		topic == "orders/updated" ||
		topic == "orders/cancelled" ||
		topic == "orders/paid" ||
		topic == "orders/fulfilled" ||
		topic == "orders/partially_fulfilled"
}

// Handle processes an order webhook event
func (h *OrderHandler) Handle(ctx context.Context, tenant *domain.Tenant, event *domain.WebhookEvent) (int, error) {
	var payload goshopify.Order
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return 0, fmt.Errorf("failed to parse order webhook payload: %w", err)
	}

	order, err := h.ingestion.UpsertOrder(ctx, tenant.ID, &payload)
	if err != nil {
		return 0, err
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Str("orderId", order.ShopifyID).
		Int("orderNumber", order.OrderNumber).
		Str("totalPrice", order.TotalPrice).
		Msg("Order webhook ingested")
	return 1, nil
}
