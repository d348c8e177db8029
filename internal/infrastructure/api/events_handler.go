package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/infrastructure/pubsub"

	"github.com/rs/zerolog"
)

const heartbeatInterval = 15 * time.Second

// eventsHandler streams ingestion outcomes as Server-Sent Events
type eventsHandler struct {
	events *pubsub.EventPubSub
	logger zerolog.Logger
}

func (h *eventsHandler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	filter := &pubsub.EventFilter{Shop: domain.NormalizeShopDomain(r.URL.Query().Get("shop"))}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		filter.Kinds = strings.Split(kind, ",")
	}
	sub := h.events.Subscribe(r.Context(), filter)
	defer h.events.Unsubscribe(sub.ID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, ": subscribed %s\n\n", sub.ID)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub.Events:
			if !open {
				return
			}
			b, err := json.Marshal(event)
			if err != nil {
				h.logger.Error().Err(err).Msg("Failed to encode ingestion event")
				continue
			}
			fmt.Fprintf(w, "event: ingestion\ndata: %s\n\n", b)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, "event: heartbeat\ndata: {\"ts\":%q}\n\n", time.Now().UTC().Format(time.RFC3339))
			flusher.Flush()
		}
	}
}
