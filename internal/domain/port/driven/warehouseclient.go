package driven

import (
	"context"
	"errors"
	"time"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
)

// ErrUnauthorized is returned by WarehouseClient operations when the API
// rejected the request's token even after one invalidate-and-retry cycle.
var ErrUnauthorized = errors.New("warehouse api: unauthorized")

// Authenticator defines the driven port for obtaining an API token from the
// warehouse provider. Kept separate from WarehouseClient so the token
// manager can depend on authentication without forming a cycle with the
// data client, which in turn depends on the token manager.
type Authenticator interface {
	// Authenticate exchanges the credential pair for a fresh token.
	// The TestMode flag selects the provider environment.
	Authenticate(ctx context.Context, creds model.Credentials) (model.AuthToken, error)
}

// TokenSource supplies the current API token to the data client and accepts
// invalidation when the server rejects it.
type TokenSource interface {
	// Token returns the cached token, fetching a fresh one on a cache miss.
	// A zero-value token (Present() == false) means authentication failed;
	// the caller decides how to surface that.
	Token(ctx context.Context) model.AuthToken

	// Invalidate clears the cached token unconditionally. Idempotent.
	Invalidate()
}

// WarehouseClient defines the driven port for the warehouse provider's data
// API. All operations carry the current token; an unauthorized response is
// retried once with a fresh token before surfacing ErrUnauthorized.
type WarehouseClient interface {
	// FetchStockChanges returns stock records changed at or after since.
	FetchStockChanges(ctx context.Context, since time.Time) ([]model.StockChange, error)

	// FetchOrderChanges returns order status records changed at or after since.
	FetchOrderChanges(ctx context.Context, since time.Time) ([]model.OrderChange, error)

	// PushTrackingUpdate delivers a local tracking number to the provider.
	PushTrackingUpdate(ctx context.Context, externalOrderID string, update model.TrackingUpdate) error

	// ListWarehouses returns the provider's warehouse catalog, used to
	// classify warehouse source tags by stock type.
	ListWarehouses(ctx context.Context) ([]model.Warehouse, error)
}
