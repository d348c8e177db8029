package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopify-ingest/internal/application"
	"shopify-ingest/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type createTenantRequest struct {
	ShopDomain    string `json:"shopDomain"`
	AccessToken   string `json:"accessToken"`
	WebhookSecret string `json:"webhookSecret,omitempty"`
}

type tenantHandler struct {
	tenants *application.TenantService
	logger  zerolog.Logger
}

func (h *tenantHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	tenant, err := h.tenants.Onboard(r.Context(), application.OnboardInput{
		ShopDomain:    req.ShopDomain,
		AccessToken:   req.AccessToken,
		WebhookSecret: req.WebhookSecret,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidShopDomain) || errors.Is(err, domain.ErrInvalidPayload) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("shop", req.ShopDomain).Msg("Failed to onboard tenant")
		writeError(w, http.StatusInternalServerError, "Failed to save tenant")
		return
	}
	writeJSON(w, http.StatusCreated, tenant)
}

func (h *tenantHandler) list(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list tenants")
		writeError(w, http.StatusInternalServerError, "Failed to list tenants")
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}

func (h *tenantHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.tenants.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			writeError(w, http.StatusNotFound, "Tenant not found")
			return
		}
		h.logger.Error().Err(err).Str("tenantId", id).Msg("Failed to delete tenant")
		writeError(w, http.StatusInternalServerError, "Failed to delete tenant")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
