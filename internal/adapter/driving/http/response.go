package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
)

// writeJSON marshals v and writes it with the given status code. If
// marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// SettingsResponse is the JSON representation of the runtime settings.
// Secrets are reduced to presence flags; plaintext never leaves the store
// through the read path.
type SettingsResponse struct {
	Username            string `json:"username"`
	PasswordSet         bool   `json:"password_set"`
	TestUsername        string `json:"test_username"`
	TestPasswordSet     bool   `json:"test_password_set"`
	TestMode            bool   `json:"test_mode"`
	SyncIntervalSeconds int    `json:"sync_interval_seconds"`
	DebugEnabled        bool   `json:"debug_enabled"`
	AddTrackingEnabled  bool   `json:"add_tracking_enabled"`
	StockSyncedAt       string `json:"stock_synced_at,omitempty"`
	OrderSyncedAt       string `json:"order_synced_at,omitempty"`
}

// UpdateSettingsRequest is the JSON body for the settings update endpoint.
type UpdateSettingsRequest struct {
	Username            string `json:"username"`
	Password            string `json:"password"`
	TestUsername        string `json:"test_username"`
	TestPassword        string `json:"test_password"`
	TestMode            bool   `json:"test_mode"`
	SyncIntervalSeconds int    `json:"sync_interval_seconds"`
	DebugEnabled        bool   `json:"debug_enabled"`
	AddTrackingEnabled  bool   `json:"add_tracking_enabled"`
}

// UpdateSettingsResponse reports the persisted state and the credential check.
type UpdateSettingsResponse struct {
	Settings           SettingsResponse `json:"settings"`
	CredentialsChanged bool             `json:"credentials_changed"`
	Authenticated      bool             `json:"authenticated"`
}

// SyncResultResponse is the JSON representation of one resource's outcome
// within a run.
type SyncResultResponse struct {
	Resource   string `json:"resource"`
	Outcome    string `json:"outcome"`
	Since      string `json:"since"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
	Error      string `json:"error,omitempty"`
}

// StatusResponse is the JSON representation of the status endpoint.
type StatusResponse struct {
	TokenCached   bool                 `json:"token_cached"`
	StockSyncedAt string               `json:"stock_synced_at,omitempty"`
	OrderSyncedAt string               `json:"order_synced_at,omitempty"`
	LastRun       []SyncResultResponse `json:"last_run"`
}

// FilterRatesRequest is the JSON body for the rate filtering endpoint.
type FilterRatesRequest struct {
	Items []CartItemRequest     `json:"items"`
	Rates []ShippingRateRequest `json:"rates"`
}

// CartItemRequest is one cart line in a rate filtering request.
type CartItemRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// ShippingRateRequest is one candidate rate in a rate filtering request
// and in its response.
type ShippingRateRequest struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	CostCents int64  `json:"cost_cents"`
}

// SetTrackingRequest is the JSON body for the order tracking endpoint.
type SetTrackingRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toSettingsResponse converts a settings snapshot to its JSON representation.
func toSettingsResponse(s model.Settings) SettingsResponse {
	resp := SettingsResponse{
		Username:            s.Username,
		PasswordSet:         s.Password != "",
		TestUsername:        s.TestUsername,
		TestPasswordSet:     s.TestPassword != "",
		TestMode:            s.TestMode,
		SyncIntervalSeconds: s.SyncIntervalSeconds,
		DebugEnabled:        s.DebugEnabled,
		AddTrackingEnabled:  s.AddTrackingEnabled,
	}
	if s.StockSyncedAt != nil {
		resp.StockSyncedAt = s.StockSyncedAt.UTC().Format(time.RFC3339)
	}
	if s.OrderSyncedAt != nil {
		resp.OrderSyncedAt = s.OrderSyncedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// toSyncResultResponse converts a sync job result to its JSON representation.
func toSyncResultResponse(r model.SyncJobResult) SyncResultResponse {
	resp := SyncResultResponse{
		Resource:   string(r.Resource),
		Outcome:    string(r.Outcome),
		Since:      r.Since.UTC().Format(time.RFC3339),
		StartedAt:  r.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: r.FinishedAt.UTC().Format(time.RFC3339),
	}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}

func toRate(r ShippingRateRequest) model.ShippingRate {
	return model.ShippingRate{ID: r.ID, Label: r.Label, CostCents: r.CostCents}
}

func fromRate(r model.ShippingRate) ShippingRateRequest {
	return ShippingRateRequest{ID: r.ID, Label: r.Label, CostCents: r.CostCents}
}
