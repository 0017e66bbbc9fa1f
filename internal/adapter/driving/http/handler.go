// Package httphandler is the HTTP driving adapter serving the admin and
// storefront-facing API.
package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tkiviniemi/stocklink/internal/application"
	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter.
type Handler struct {
	settingsSvc *application.SettingsService
	scheduler   *application.Scheduler
	orch        *application.Orchestrator
	tokens      *application.TokenManager
	filter      *application.ShippingFilter
	orders      driven.OrderStore
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	settingsSvc *application.SettingsService,
	scheduler *application.Scheduler,
	orch *application.Orchestrator,
	tokens *application.TokenManager,
	filter *application.ShippingFilter,
	orders driven.OrderStore,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		settingsSvc: settingsSvc,
		scheduler:   scheduler,
		orch:        orch,
		tokens:      tokens,
		filter:      filter,
		orders:      orders,
		logger:      logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/settings", h.GetSettings)
	mux.HandleFunc("PUT /api/v1/settings", h.UpdateSettings)
	mux.HandleFunc("POST /api/v1/sync", h.TriggerSync)
	mux.HandleFunc("GET /api/v1/status", h.Status)
	mux.HandleFunc("POST /api/v1/shipping/filter", h.FilterRates)
	mux.HandleFunc("PUT /api/v1/orders/{externalID}/tracking", h.SetTracking)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// GetSettings returns the current settings with secrets redacted.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsSvc.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// UpdateSettings replaces the runtime settings and reports the credential
// check outcome when the update changed credentials.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SyncIntervalSeconds < 0 {
		writeError(w, http.StatusBadRequest, "sync_interval_seconds must not be negative")
		return
	}

	updated := model.Settings{
		Username:            req.Username,
		Password:            req.Password,
		TestUsername:        req.TestUsername,
		TestPassword:        req.TestPassword,
		TestMode:            req.TestMode,
		SyncIntervalSeconds: req.SyncIntervalSeconds,
		DebugEnabled:        req.DebugEnabled,
		AddTrackingEnabled:  req.AddTrackingEnabled,
	}

	check, err := h.settingsSvc.Update(r.Context(), updated)
	if err != nil {
		h.logger.Error("failed to update settings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	current, err := h.settingsSvc.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to reload settings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, UpdateSettingsResponse{
		Settings:           toSettingsResponse(current),
		CredentialsChanged: check.CredentialsChanged,
		Authenticated:      check.Authenticated,
	})
}

// TriggerSync runs a sync immediately, outside the schedule.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	results, err := h.scheduler.TriggerSync(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusRequestTimeout, "sync canceled")
			return
		}
		h.logger.Error("manual sync failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if results == nil {
		writeError(w, http.StatusConflict, "a sync run is already in progress")
		return
	}
	// A run that aborted before reaching any resource yields no results.
	if len(results) == 0 {
		writeError(w, http.StatusInternalServerError, "sync run aborted")
		return
	}

	resp := make([]SyncResultResponse, 0, len(results))
	for _, res := range results {
		resp = append(resp, toSyncResultResponse(res))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Status reports the watermarks, token cache state, and the last run.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsSvc.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := StatusResponse{
		TokenCached: h.tokens.HasToken(),
		LastRun:     []SyncResultResponse{},
	}
	if settings.StockSyncedAt != nil {
		resp.StockSyncedAt = settings.StockSyncedAt.UTC().Format(time.RFC3339)
	}
	if settings.OrderSyncedAt != nil {
		resp.OrderSyncedAt = settings.OrderSyncedAt.UTC().Format(time.RFC3339)
	}
	for _, res := range h.orch.LastResults() {
		resp.LastRun = append(resp.LastRun, toSyncResultResponse(res))
	}

	writeJSON(w, http.StatusOK, resp)
}

// FilterRates returns the shipping rates eligible for the submitted cart.
func (h *Handler) FilterRates(w http.ResponseWriter, r *http.Request) {
	var req FilterRatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]model.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, model.CartItem{SKU: item.SKU, Quantity: item.Quantity})
	}
	rates := make([]model.ShippingRate, 0, len(req.Rates))
	for _, rate := range req.Rates {
		rates = append(rates, toRate(rate))
	}

	filtered := h.filter.FilterRates(r.Context(), items, rates)

	resp := make([]ShippingRateRequest, 0, len(filtered))
	for _, rate := range filtered {
		resp = append(resp, fromRate(rate))
	}

	writeJSON(w, http.StatusOK, resp)
}

// SetTracking records a tracking number on a mirrored order. The number is
// pushed to the provider on the next sync run when tracking push is enabled.
func (h *Handler) SetTracking(w http.ResponseWriter, r *http.Request) {
	externalID := r.PathValue("externalID")

	var req SetTrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.TrackingNumber) == "" {
		writeError(w, http.StatusBadRequest, "tracking_number is required")
		return
	}

	if err := h.orders.SetTracking(r.Context(), externalID, req.TrackingNumber); err != nil {
		order, lookupErr := h.orders.GetByExternalID(r.Context(), externalID)
		if lookupErr == nil && order == nil {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("failed to set tracking", "order", externalID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health is a liveness check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
