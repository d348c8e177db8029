// Package api exposes the webhook intake, sync trigger and admin routes over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"shopify-ingest/internal/application"
	"shopify-ingest/internal/infrastructure/metrics"
	securitymiddleware "shopify-ingest/internal/infrastructure/middleware"
	"shopify-ingest/internal/infrastructure/pubsub"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig holds the HTTP-level settings of the router
type RouterConfig struct {
	AdminUsername       string
	AdminPassword       string
	CORSAllowedOrigins  []string
	WebhookMaxBodyBytes int64
	SwaggerFile         string
}

// Services are the application entry points the routes call into
type Services struct {
	Intake  *application.WebhookIntakeService
	Sync    *application.SyncService
	Tenants *application.TenantService
	Events  *pubsub.EventPubSub

	// KnownTopic reports topics a consumer handler claims; others are labeled "other" in metrics
	KnownTopic func(topic string) bool
}

// NewRouter builds the chi router serving every public and admin route
func NewRouter(svc Services, cfg RouterConfig, logger zerolog.Logger) http.Handler {
	if cfg.WebhookMaxBodyBytes <= 0 {
		cfg.WebhookMaxBodyBytes = 5 << 20
	}
	if cfg.SwaggerFile == "" {
		cfg.SwaggerFile = "./docs/swagger.json"
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	for _, mw := range securitymiddleware.RequestLogging(logger) {
		r.Use(mw)
	}
	r.Use(middleware.Recoverer)
	r.Use(securitymiddleware.SecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Shopify-Topic", "X-Shopify-Shop-Domain", "X-Shopify-Hmac-Sha256", "X-Shopify-Webhook-Id"},
	}))
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{"status": "ok"}
		if svc.Events != nil {
			resp["eventSubscribers"] = svc.Events.Subscribers()
		}
		writeJSON(w, http.StatusOK, resp)
	})
	r.Handle("/metrics", metrics.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, cfg.SwaggerFile)
	})

	webhooks := &webhookHandler{intake: svc.Intake, knownTopic: svc.KnownTopic, maxBodyBytes: cfg.WebhookMaxBodyBytes, logger: logger}
	syncs := &syncHandler{sync: svc.Sync, logger: logger}
	r.Post("/api/webhooks", webhooks.ServeHTTP)
	r.Post("/api/sync", syncs.ServeHTTP)

	tenants := &tenantHandler{tenants: svc.Tenants, logger: logger}
	events := &eventsHandler{events: svc.Events, logger: logger}
	r.Group(func(r chi.Router) {
		r.Use(securitymiddleware.BasicAuthMiddleware(cfg.AdminUsername, cfg.AdminPassword, logger))
		r.Post("/api/tenants", tenants.create)
		r.Get("/api/tenants", tenants.list)
		r.Delete("/api/tenants/{id}", tenants.delete)
		r.Get("/api/events", events.stream)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
