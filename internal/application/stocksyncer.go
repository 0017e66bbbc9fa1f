package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// ResourceSyncer is the contract shared by the stock and order syncers.
// Sync performs one incremental pass over everything changed at or after
// since. The settings snapshot is the one captured at run start; syncers
// must not re-read settings mid-run.
type ResourceSyncer interface {
	Resource() model.SyncResource
	Sync(ctx context.Context, since time.Time, settings model.Settings) (model.SyncOutcome, error)
}

// StockSyncer pulls incremental stock changes from the warehouse API into the
// local product mirror, tagging each product with its source warehouse. It
// also refreshes the cached warehouse catalog used by the shipping filter.
type StockSyncer struct {
	client     driven.WarehouseClient
	products   driven.ProductStore
	warehouses driven.WarehouseStore
	logger     *slog.Logger
}

// NewStockSyncer creates a StockSyncer.
func NewStockSyncer(client driven.WarehouseClient, products driven.ProductStore, warehouses driven.WarehouseStore, logger *slog.Logger) *StockSyncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StockSyncer{
		client:     client,
		products:   products,
		warehouses: warehouses,
		logger:     logger,
	}
}

// Resource implements ResourceSyncer.
func (s *StockSyncer) Resource() model.SyncResource {
	return model.ResourceStock
}

// Sync refreshes the warehouse catalog, then applies all stock changes since
// the watermark. Any persistence error fails the whole pass so the watermark
// is not advanced past partially applied data.
func (s *StockSyncer) Sync(ctx context.Context, since time.Time, _ model.Settings) (model.SyncOutcome, error) {
	catalog, err := s.client.ListWarehouses(ctx)
	if err != nil {
		return model.SyncFailed, fmt.Errorf("refresh warehouse catalog: %w", err)
	}
	if err := s.warehouses.ReplaceAll(ctx, catalog); err != nil {
		return model.SyncFailed, fmt.Errorf("store warehouse catalog: %w", err)
	}

	changes, err := s.client.FetchStockChanges(ctx, since)
	if err != nil {
		return model.SyncFailed, err
	}
	if len(changes) == 0 {
		s.logger.Debug("stock sync: no changes", "since", since)
		return model.SyncNoChanges, nil
	}

	for _, change := range changes {
		product := model.Product{
			SKU:       change.SKU,
			Name:      change.ProductName,
			Quantity:  change.Quantity,
			Warehouse: change.WarehouseID,
			UpdatedAt: change.ChangedAt,
		}
		if err := s.products.Upsert(ctx, product); err != nil {
			return model.SyncFailed, fmt.Errorf("apply stock change %q: %w", change.SKU, err)
		}
	}

	s.logger.Info("stock sync applied", "since", since, "changes", len(changes), "warehouses", len(catalog))
	return model.SyncSucceeded, nil
}
