package webhook_handlers

import (
	"context"
	"encoding/json"
	"testing"

	"shopify-ingest/internal/application"
	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/infrastructure/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanHandle(t *testing.T) {
	ingestion := application.NewIngestionService(repository.NewMemoryRepository(), zerolog.Nop())
	handlers := map[string]application.WebhookHandler{
		"customer": NewCustomerHandler(ingestion, zerolog.Nop()),
		"order":    NewOrderHandler(ingestion, zerolog.Nop()),
		"product":  NewProductHandler(ingestion, zerolog.Nop()),
		"checkout": NewCheckoutHandler(ingestion, zerolog.Nop()),
	}

	tests := []struct {
		topic string
		want  string // handler name, empty for none
	}{
		{"customers/create", "customer"},
		{"customers/disable", "customer"},
		{"customers/delete", ""},
		{"orders/create", "order"},
		{"orders/partially_fulfilled", "order"},
		{"orders/delete", ""},
		{"orders/edited", ""},
		{"products/update", "product"},
		{"products/delete", ""},
		{"checkouts/create", "checkout"},
		{"checkouts/update", "checkout"},
		{"app/uninstalled", ""},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			var claimed []string
			for name, h := range handlers {
				if h.CanHandle(tt.topic) {
					claimed = append(claimed, name)
				}
			}
			if tt.want == "" {
				assert.Empty(t, claimed)
				return
			}
			assert.Equal(t, []string{tt.want}, claimed)
		})
	}
}

func TestCheckoutHandler_Handle(t *testing.T) {
	repo := repository.NewMemoryRepository()
	h := NewCheckoutHandler(application.NewIngestionService(repo, zerolog.Nop()), zerolog.Nop())
	tenant := &domain.Tenant{ID: "t1", ShopDomain: "demo.myshopify.com"}

	n, err := h.Handle(context.Background(), tenant, &domain.WebhookEvent{
		Topic: "checkouts/create",
		Data:  json.RawMessage(`{"id":55,"token":"abc","total_price":"12","currency":"USD","abandoned_checkout_url":"https://demo.myshopify.com/r/abc"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored := repo.Checkouts("t1")
	require.Len(t, stored, 1)
	assert.Equal(t, "55", stored[0].ShopifyID)
	assert.Equal(t, "12.00", stored[0].TotalPrice)
	assert.Equal(t, "https://demo.myshopify.com/r/abc", stored[0].AbandonedCheckoutURL)
}

func TestOrderHandler_RejectsMalformedPayload(t *testing.T) {
	h := NewOrderHandler(application.NewIngestionService(repository.NewMemoryRepository(), zerolog.Nop()), zerolog.Nop())
	_, err := h.Handle(context.Background(), &domain.Tenant{ID: "t1"}, &domain.WebhookEvent{
		Topic: "orders/create",
		Data:  json.RawMessage(`{"id":"not-a-number"}`),
	})
	assert.Error(t, err)
}
