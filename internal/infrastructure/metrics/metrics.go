package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is the dedicated Prometheus registry for the service
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, route pattern and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// WebhooksReceived counts intake outcomes by topic and result (accepted, unauthorized, error)
	WebhooksReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "shopify_webhooks_received_total", Help: "Webhook intake outcomes by topic and result."},
		[]string{"topic", "result"},
	)

	// MessagesProcessed counts settled bus messages by kind, resource and outcome
	MessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ingest_messages_processed_total", Help: "Bus messages settled by kind, resource and outcome."},
		[]string{"kind", "resource", "outcome"},
	)
	MessageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "ingest_message_duration_seconds", Help: "Time spent handling one bus message.", Buckets: prometheus.DefBuckets},
		[]string{"kind", "resource"},
	)

	RecordsUpserted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ingest_records_upserted_total", Help: "Records written to the store by resource."},
		[]string{"resource"},
	)

	// ShopifyRateLimited counts 429 responses from the Admin API
	ShopifyRateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "shopify_rate_limited_total", Help: "Rate-limited Shopify API calls by resource."},
		[]string{"resource"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry once
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(WebhooksReceived)
		Registry.MustRegister(MessagesProcessed)
		Registry.MustRegister(MessageDuration)
		Registry.MustRegister(RecordsUpserted)
		Registry.MustRegister(ShopifyRateLimited)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies labelled by chi route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := strconv.Itoa(ww.Status())
		HTTPRequests.WithLabelValues(r.Method, path, status).Inc()
		HTTPDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}
