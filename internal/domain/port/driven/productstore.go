package driven

import (
	"context"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
)

// ProductStore defines the driven port for the local product mirror.
type ProductStore interface {
	// Upsert inserts or replaces a product by SKU.
	Upsert(ctx context.Context, product model.Product) error

	// GetBySKU returns the product with the given SKU, or (nil, nil) when
	// no such product exists.
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)

	// ListAll returns all mirrored products.
	ListAll(ctx context.Context) ([]model.Product, error)
}

// WarehouseStore defines the driven port for the cached warehouse catalog.
type WarehouseStore interface {
	// ReplaceAll swaps the full catalog for the given set.
	ReplaceAll(ctx context.Context, warehouses []model.Warehouse) error

	// GetType returns the stock type for the given warehouse ID, or
	// ("", nil) when the warehouse is unknown.
	GetType(ctx context.Context, warehouseID string) (string, error)

	// ListAll returns the cached catalog.
	ListAll(ctx context.Context) ([]model.Warehouse, error)
}
