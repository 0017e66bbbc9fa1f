package warehouse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// staticTokens is a TokenSource handing out tokens from a fixed list,
// advancing on each Invalidate call.
type staticTokens struct {
	tokens      []string
	idx         atomic.Int64
	invalidated atomic.Int64
}

func (s *staticTokens) Token(_ context.Context) model.AuthToken {
	i := s.idx.Load()
	if int(i) >= len(s.tokens) {
		return model.AuthToken{}
	}
	return model.AuthToken{Value: s.tokens[i], ObtainedAt: time.Now()}
}

func (s *staticTokens) Invalidate() {
	s.invalidated.Add(1)
	s.idx.Add(1)
}

func newTestClient(t *testing.T, handler http.Handler, tokens driven.TokenSource) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, tokens)
	return client, srv
}

func TestAuthClient_Authenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/token", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "merchant", user)
		assert.Equal(t, "secret", pass)

		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 3600})
	}))
	t.Cleanup(srv.Close)

	auth := NewAuthClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	token, err := auth.Authenticate(context.Background(), model.Credentials{Username: "merchant", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token.Value)
	assert.False(t, token.TestMode)
	assert.False(t, token.ObtainedAt.IsZero())
}

func TestAuthClient_AuthenticateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	auth := NewAuthClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	_, err := auth.Authenticate(context.Background(), model.Credentials{Username: "merchant", Password: "wrong"})
	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrUnauthorized)
}

func TestClient_FetchStockChanges(t *testing.T) {
	since := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/stock/changes", r.URL.Path)
		assert.Equal(t, since.Format(time.RFC3339), r.URL.Query().Get("since"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"sku": "SKU-1", "product_name": "Widget", "quantity": 7, "warehouse_id": "W1", "changed_at": "2024-02-02T10:00:00Z"},
			},
		})
	})

	client, _ := newTestClient(t, handler, &staticTokens{tokens: []string{"tok-1"}})

	changes, err := client.FetchStockChanges(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "SKU-1", changes[0].SKU)
	assert.Equal(t, 7, changes[0].Quantity)
	assert.Equal(t, "W1", changes[0].WarehouseID)
}

func TestClient_FetchOrderChanges(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders/changes", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"order_id": "EXT-1", "status": "shipped", "changed_at": "2024-02-02T10:00:00Z"},
			},
		})
	})

	client, _ := newTestClient(t, handler, &staticTokens{tokens: []string{"tok-1"}})

	changes, err := client.FetchOrderChanges(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "EXT-1", changes[0].ExternalID)
	assert.Equal(t, "shipped", changes[0].Status)
}

func TestClient_UnauthorizedRetriesOnceWithFreshToken(t *testing.T) {
	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"warehouses": []map[string]any{}})
	})

	tokens := &staticTokens{tokens: []string{"stale", "fresh"}}
	client, _ := newTestClient(t, handler, tokens)

	_, err := client.ListWarehouses(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
	assert.EqualValues(t, 1, tokens.invalidated.Load())
}

func TestClient_UnauthorizedTwicePropagates(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	tokens := &staticTokens{tokens: []string{"one", "two"}}
	client, _ := newTestClient(t, handler, tokens)

	_, err := client.ListWarehouses(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrUnauthorized)
	assert.EqualValues(t, 1, tokens.invalidated.Load())
}

func TestClient_NoTokenFailsFast(t *testing.T) {
	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	client, _ := newTestClient(t, handler, &staticTokens{})

	_, err := client.ListWarehouses(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrUnauthorized)
	assert.Zero(t, calls.Load())
}

func TestClient_PushTrackingUpdate(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/orders/EXT-1/tracking", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "JJFI123", body["tracking_number"])

		w.WriteHeader(http.StatusNoContent)
	})

	client, _ := newTestClient(t, handler, &staticTokens{tokens: []string{"tok-1"}})

	err := client.PushTrackingUpdate(context.Background(), "EXT-1", model.TrackingUpdate{TrackingNumber: "JJFI123"})
	require.NoError(t, err)
}

func TestClient_ServerErrorSurfaces(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client, _ := newTestClient(t, handler, &staticTokens{tokens: []string{"tok-1"}})

	_, err := client.FetchStockChanges(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
