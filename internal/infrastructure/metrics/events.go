package metrics

import (
	"time"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/ports"
)

// EventRecorder turns ingestion events into Prometheus samples
type EventRecorder struct{}

var _ ports.EventPublisher = EventRecorder{}

func NewEventRecorder() EventRecorder {
	return EventRecorder{}
}

func (EventRecorder) Publish(e *domain.IngestionEvent) {
	kind, resource := e.Kind, e.Resource
	if kind == "" {
		kind = "unknown"
	}
	MessagesProcessed.WithLabelValues(kind, resource, e.Outcome).Inc()
	MessageDuration.WithLabelValues(kind, resource).Observe((time.Duration(e.DurationMs) * time.Millisecond).Seconds())

	if e.Records > 0 {
		RecordsUpserted.WithLabelValues(resource).Add(float64(e.Records))
	}
	// sync jobs are only nak'ed on a 429
	if e.Outcome == ports.NakWithDelay.String() && kind == domain.KindIngest.String() {
		ShopifyRateLimited.WithLabelValues(resource).Inc()
	}
}
