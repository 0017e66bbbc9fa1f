package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gregjones/httpcache"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.WarehouseClient = (*Client)(nil)

// Config holds the endpoint configuration shared by the auth and data clients.
type Config struct {
	// BaseURL is the production API root, e.g. "https://ecom-api.posti.com".
	BaseURL string
	// TestBaseURL is the sandbox API root used when the active credentials
	// are the test pair.
	TestBaseURL string
	// Timeout bounds each HTTP request so a hung call cannot stall a sync
	// run indefinitely. Defaults to 30 seconds.
	Timeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

func (c Config) baseURL(testMode bool) string {
	if testMode && c.TestBaseURL != "" {
		return c.TestBaseURL
	}
	return c.BaseURL
}

// Client implements the WarehouseClient port with the following transport
// stack: httpcache (conditional-request caching of GET endpoints) under a
// bounded-timeout http.Client, bearer-token auth from the TokenSource, and
// one invalidate-and-retry cycle on unauthorized responses.
type Client struct {
	cfg    Config
	tokens driven.TokenSource
	http   *http.Client
}

// NewClient creates a data client that authenticates via the given TokenSource.
func NewClient(cfg Config, tokens driven.TokenSource) *Client {
	cfg.applyDefaults()
	return &Client{
		cfg:    cfg,
		tokens: tokens,
		http: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   cfg.Timeout,
		},
	}
}

type stockChangeDTO struct {
	SKU         string    `json:"sku"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	WarehouseID string    `json:"warehouse_id"`
	ChangedAt   time.Time `json:"changed_at"`
}

type orderChangeDTO struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

type warehouseDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type trackingUpdateDTO struct {
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier,omitempty"`
}

// FetchStockChanges returns stock records changed at or after since.
func (c *Client) FetchStockChanges(ctx context.Context, since time.Time) ([]model.StockChange, error) {
	q := url.Values{"since": {since.UTC().Format(time.RFC3339)}}

	var payload struct {
		Items []stockChangeDTO `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/stock/changes", q, nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch stock changes: %w", err)
	}

	changes := make([]model.StockChange, 0, len(payload.Items))
	for _, item := range payload.Items {
		changes = append(changes, model.StockChange{
			SKU:         item.SKU,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			WarehouseID: item.WarehouseID,
			ChangedAt:   item.ChangedAt,
		})
	}

	return changes, nil
}

// FetchOrderChanges returns order status records changed at or after since.
func (c *Client) FetchOrderChanges(ctx context.Context, since time.Time) ([]model.OrderChange, error) {
	q := url.Values{"since": {since.UTC().Format(time.RFC3339)}}

	var payload struct {
		Items []orderChangeDTO `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/orders/changes", q, nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch order changes: %w", err)
	}

	changes := make([]model.OrderChange, 0, len(payload.Items))
	for _, item := range payload.Items {
		changes = append(changes, model.OrderChange{
			ExternalID: item.OrderID,
			Status:     item.Status,
			ChangedAt:  item.ChangedAt,
		})
	}

	return changes, nil
}

// PushTrackingUpdate delivers a local tracking number to the provider.
func (c *Client) PushTrackingUpdate(ctx context.Context, externalOrderID string, update model.TrackingUpdate) error {
	body := trackingUpdateDTO{
		TrackingNumber: update.TrackingNumber,
		Carrier:        update.Carrier,
	}

	path := "/v1/orders/" + url.PathEscape(externalOrderID) + "/tracking"
	if err := c.do(ctx, http.MethodPut, path, nil, body, nil); err != nil {
		return fmt.Errorf("push tracking for order %q: %w", externalOrderID, err)
	}

	return nil
}

// ListWarehouses returns the provider's warehouse catalog.
func (c *Client) ListWarehouses(ctx context.Context) ([]model.Warehouse, error) {
	var payload struct {
		Warehouses []warehouseDTO `json:"warehouses"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/warehouses", nil, nil, &payload); err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}

	warehouses := make([]model.Warehouse, 0, len(payload.Warehouses))
	for _, wh := range payload.Warehouses {
		warehouses = append(warehouses, model.Warehouse{ID: wh.ID, Name: wh.Name, Type: wh.Type})
	}

	return warehouses, nil
}

// do performs one authenticated request. An unauthorized response triggers a
// single token invalidation and retry; a second rejection surfaces
// driven.ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	retried := false
	for {
		token := c.tokens.Token(ctx)
		if !token.Present() {
			return fmt.Errorf("%s %s: no token: %w", method, path, driven.ErrUnauthorized)
		}

		status, err := c.doOnce(ctx, method, path, query, body, out, token)
		if err != nil {
			return err
		}

		if status == http.StatusUnauthorized {
			if retried {
				return fmt.Errorf("%s %s: %w", method, path, driven.ErrUnauthorized)
			}
			c.tokens.Invalidate()
			retried = true
			continue
		}

		return nil
	}
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body, out any, token model.AuthToken) (int, error) {
	u := c.cfg.baseURL(token.TestMode) + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return 0, fmt.Errorf("%s %s: build request: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Value)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Drain so the connection can be reused across the retry.
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	if out != nil {
		data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		if err != nil {
			return resp.StatusCode, fmt.Errorf("%s %s: read response: %w", method, path, err)
		}
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}

	return resp.StatusCode, nil
}
