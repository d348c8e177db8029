package metrics

import (
	"testing"

	"shopify-ingest/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestEventRecorder(t *testing.T) {
	RegisterDefault()
	rec := NewEventRecorder()

	processed := func(outcome string) float64 {
		return testutil.ToFloat64(MessagesProcessed.WithLabelValues("ingest", "products", outcome))
	}
	ackBefore, nakBefore := processed("ack"), processed("nak")
	upsertedBefore := testutil.ToFloat64(RecordsUpserted.WithLabelValues("products"))
	limitedBefore := testutil.ToFloat64(ShopifyRateLimited.WithLabelValues("products"))

	rec.Publish(&domain.IngestionEvent{Kind: "ingest", Resource: "products", Outcome: "ack", Records: 10, DurationMs: 120})
	rec.Publish(&domain.IngestionEvent{Kind: "ingest", Resource: "products", Outcome: "nak", DurationMs: 5})

	assert.Equal(t, ackBefore+1, processed("ack"))
	assert.Equal(t, nakBefore+1, processed("nak"))
	assert.Equal(t, upsertedBefore+10, testutil.ToFloat64(RecordsUpserted.WithLabelValues("products")))
	assert.Equal(t, limitedBefore+1, testutil.ToFloat64(ShopifyRateLimited.WithLabelValues("products")))
}
