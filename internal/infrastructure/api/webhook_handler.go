package api

import (
	"errors"
	"io"
	"net/http"

	"shopify-ingest/internal/application"
	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/infrastructure/metrics"

	"github.com/rs/zerolog"
)

// webhookHandler handles POST /api/webhooks.
// It authenticates and enqueues the webhook; processing happens on the bus.
type webhookHandler struct {
	intake       *application.WebhookIntakeService
	knownTopic   func(topic string) bool
	maxBodyBytes int64
	logger       zerolog.Logger
}

// Metric labels for requests whose topic header cannot be trusted
const (
	labelUnverified = "unverified"
	labelOther      = "other"
)

func (h *webhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	topic := r.Header.Get("X-Shopify-Topic")
	shop := r.Header.Get("X-Shopify-Shop-Domain")
	if topic == "" || shop == "" {
		metrics.WebhooksReceived.WithLabelValues(labelUnverified, "rejected").Inc()
		writeError(w, http.StatusBadRequest, "Missing X-Shopify-Topic or X-Shopify-Shop-Domain header")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		metrics.WebhooksReceived.WithLabelValues(labelUnverified, "rejected").Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	err = h.intake.Accept(r.Context(), application.WebhookRequest{
		Topic:      topic,
		ShopDomain: shop,
		Signature:  r.Header.Get("X-Shopify-Hmac-Sha256"),
		WebhookID:  r.Header.Get("X-Shopify-Webhook-Id"),
		Body:       body,
	})
	switch {
	case err == nil:
		metrics.WebhooksReceived.WithLabelValues(h.topicLabel(topic), "accepted").Inc()
		writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
	case errors.Is(err, domain.ErrInvalidSignature):
		metrics.WebhooksReceived.WithLabelValues(labelUnverified, "unauthorized").Inc()
		writeError(w, http.StatusUnauthorized, "Invalid signature")
	case errors.Is(err, domain.ErrInvalidShopDomain), errors.Is(err, domain.ErrInvalidTopic), errors.Is(err, domain.ErrInvalidPayload):
		metrics.WebhooksReceived.WithLabelValues(labelUnverified, "rejected").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		metrics.WebhooksReceived.WithLabelValues(h.topicLabel(topic), "error").Inc()
		h.logger.Error().
			Err(err).
			Str("shop", shop).
			Str("topic", topic).
			Msg("Failed to accept webhook")
		writeError(w, http.StatusInternalServerError, "Failed to process webhook")
	}
}

// topicLabel keeps the label set bounded: only topics a handler claims are used verbatim
func (h *webhookHandler) topicLabel(topic string) string {
	if h.knownTopic != nil && h.knownTopic(topic) {
		return topic
	}
	return labelOther
}
