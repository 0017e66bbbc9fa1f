package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// OrderSyncer pulls incremental order status changes from the warehouse API
// into the local order mirror. When tracking push is enabled it also delivers
// locally recorded tracking numbers outbound; that side channel is independent
// of the watermark and its failures never fail the inbound pass.
type OrderSyncer struct {
	client driven.WarehouseClient
	orders driven.OrderStore
	logger *slog.Logger
}

// NewOrderSyncer creates an OrderSyncer.
func NewOrderSyncer(client driven.WarehouseClient, orders driven.OrderStore, logger *slog.Logger) *OrderSyncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderSyncer{
		client: client,
		orders: orders,
		logger: logger,
	}
}

// Resource implements ResourceSyncer.
func (s *OrderSyncer) Resource() model.SyncResource {
	return model.ResourceOrders
}

// Sync applies all order status changes since the watermark, then pushes
// pending tracking numbers when the snapshot enables it.
func (s *OrderSyncer) Sync(ctx context.Context, since time.Time, settings model.Settings) (model.SyncOutcome, error) {
	changes, err := s.client.FetchOrderChanges(ctx, since)
	if err != nil {
		return model.SyncFailed, err
	}

	for _, change := range changes {
		if err := s.orders.UpsertStatus(ctx, change); err != nil {
			return model.SyncFailed, fmt.Errorf("apply order change %q: %w", change.ExternalID, err)
		}
	}

	if settings.AddTrackingEnabled {
		s.pushPendingTracking(ctx)
	}

	if len(changes) == 0 {
		s.logger.Debug("order sync: no changes", "since", since)
		return model.SyncNoChanges, nil
	}

	s.logger.Info("order sync applied", "since", since, "changes", len(changes))
	return model.SyncSucceeded, nil
}

// pushPendingTracking delivers unpushed tracking numbers to the provider.
// Each push is independent; a failed push is logged and the order stays
// pending so the next run retries it.
func (s *OrderSyncer) pushPendingTracking(ctx context.Context) {
	pending, err := s.orders.ListUnpushedTracking(ctx)
	if err != nil {
		s.logger.Error("list pending tracking failed", "error", err)
		return
	}

	var pushed int
	for _, order := range pending {
		update := model.TrackingUpdate{TrackingNumber: order.TrackingNumber}
		if err := s.client.PushTrackingUpdate(ctx, order.ExternalID, update); err != nil {
			s.logger.Error("tracking push failed", "order", order.ExternalID, "error", err)
			continue
		}
		if err := s.orders.MarkTrackingPushed(ctx, order.ExternalID); err != nil {
			s.logger.Error("mark tracking pushed failed", "order", order.ExternalID, "error", err)
			continue
		}
		pushed++
	}

	if len(pending) > 0 {
		s.logger.Info("tracking updates pushed", "pending", len(pending), "pushed", pushed)
	}
}
