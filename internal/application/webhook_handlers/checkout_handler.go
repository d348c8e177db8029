package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-ingest/internal/application"
	"shopify-ingest/internal/domain"

	"github.com/rs/zerolog"
)

// CheckoutHandler upserts checkouts, including abandoned ones
type CheckoutHandler struct {
	ingestion *application.IngestionService
	logger    zerolog.Logger
}

func NewCheckoutHandler(ingestion *application.IngestionService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		ingestion: ingestion,
		logger:    logger,
	}
}

func (h *CheckoutHandler) CanHandle(topic string) bool {
	return topic == "checkouts/create" || topic == "checkouts/update"
}

func (h *CheckoutHandler) Handle(ctx context.Context, tenant *domain.Tenant, event *domain.WebhookEvent) (int, error) {
	var payload domain.CheckoutPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return 0, fmt.Errorf("failed to parse checkout webhook payload: %w", err)
	}

	checkout, err := h.ingestion.UpsertCheckout(ctx, tenant.ID, &payload)
	if err != nil {
		return 0, err
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Str("checkoutId", checkout.ShopifyID).
		Bool("completed", checkout.CompletedAt != nil).
		Msg("Checkout webhook ingested")
	return 1, nil
}
