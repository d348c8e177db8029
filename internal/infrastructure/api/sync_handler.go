package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"shopify-ingest/internal/application"
	"shopify-ingest/internal/domain"

	"github.com/rs/zerolog"
)

type syncRequest struct {
	ShopDomain string `json:"shopDomain"`
}

// syncHandler handles POST /api/sync
type syncHandler struct {
	sync   *application.SyncService
	logger zerolog.Logger
}

func (h *syncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ShopDomain) == "" {
		writeError(w, http.StatusBadRequest, "shopDomain is required")
		return
	}

	tenant, err := h.sync.Start(r.Context(), req.ShopDomain)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			writeError(w, http.StatusNotFound, "Tenant not found")
			return
		}
		h.logger.Error().Err(err).Str("shop", req.ShopDomain).Msg("Failed to start sync")
		writeError(w, http.StatusInternalServerError, "Failed to start sync")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Sync started",
		"tenantId": tenant.ID,
	})
}
