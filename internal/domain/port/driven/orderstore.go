package driven

import (
	"context"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
)

// OrderStore defines the driven port for the local order mirror.
type OrderStore interface {
	// UpsertStatus applies one inbound status change, creating the order
	// row when it is not yet mirrored.
	UpsertStatus(ctx context.Context, change model.OrderChange) error

	// GetByExternalID returns the order with the given external ID, or
	// (nil, nil) when no such order exists.
	GetByExternalID(ctx context.Context, externalID string) (*model.Order, error)

	// SetTracking records a tracking number on an order and clears its
	// pushed flag so the next sync run delivers it to the provider.
	SetTracking(ctx context.Context, externalID, trackingNumber string) error

	// ListUnpushedTracking returns orders holding a tracking number that
	// has not yet been pushed to the provider.
	ListUnpushedTracking(ctx context.Context) ([]model.Order, error)

	// MarkTrackingPushed flags an order's tracking number as delivered.
	MarkTrackingPushed(ctx context.Context, externalID string) error
}
