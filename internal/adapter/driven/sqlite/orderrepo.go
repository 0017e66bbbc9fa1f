package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.OrderStore = (*OrderRepo)(nil)

// OrderRepo is the SQLite implementation of the OrderStore port.
type OrderRepo struct {
	db *DB
}

// NewOrderRepo creates a new OrderRepo backed by the given DB.
func NewOrderRepo(db *DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// UpsertStatus applies one inbound status change. The tracking fields are
// left untouched on update; they belong to the outbound side channel.
func (r *OrderRepo) UpsertStatus(ctx context.Context, change model.OrderChange) error {
	const query = `
		INSERT INTO orders (external_id, status, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		change.ExternalID, change.Status, formatTime(change.ChangedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert order status %q: %w", change.ExternalID, err)
	}

	return nil
}

// GetByExternalID returns the order with the given external ID, or (nil, nil)
// when absent.
func (r *OrderRepo) GetByExternalID(ctx context.Context, externalID string) (*model.Order, error) {
	const query = `
		SELECT id, external_id, status, tracking_number, tracking_pushed, updated_at
		FROM orders
		WHERE external_id = ?
	`

	o, err := scanOrder(r.db.Reader.QueryRowContext(ctx, query, externalID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order %q: %w", externalID, err)
	}

	return o, nil
}

// SetTracking records a tracking number and clears the pushed flag so the
// next sync run delivers it.
func (r *OrderRepo) SetTracking(ctx context.Context, externalID, trackingNumber string) error {
	const query = `
		UPDATE orders
		SET tracking_number = ?, tracking_pushed = 0, updated_at = ?
		WHERE external_id = ?
	`

	res, err := r.db.Writer.ExecContext(ctx, query,
		trackingNumber, formatTime(time.Now()), externalID,
	)
	if err != nil {
		return fmt.Errorf("set tracking for order %q: %w", externalID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set tracking for order %q: %w", externalID, err)
	}
	if affected == 0 {
		return fmt.Errorf("set tracking for order %q: order not found", externalID)
	}

	return nil
}

// ListUnpushedTracking returns orders holding an undelivered tracking number.
func (r *OrderRepo) ListUnpushedTracking(ctx context.Context) ([]model.Order, error) {
	const query = `
		SELECT id, external_id, status, tracking_number, tracking_pushed, updated_at
		FROM orders
		WHERE tracking_number != '' AND tracking_pushed = 0
		ORDER BY external_id
	`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unpushed tracking: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

// MarkTrackingPushed flags an order's tracking number as delivered.
func (r *OrderRepo) MarkTrackingPushed(ctx context.Context, externalID string) error {
	const query = `UPDATE orders SET tracking_pushed = 1 WHERE external_id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, externalID); err != nil {
		return fmt.Errorf("mark tracking pushed %q: %w", externalID, err)
	}

	return nil
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o         model.Order
		pushed    int
		updatedAt string
	)

	if err := row.Scan(&o.ID, &o.ExternalID, &o.Status, &o.TrackingNumber, &pushed, &updatedAt); err != nil {
		return nil, err
	}

	o.TrackingPushed = pushed != 0

	var err error
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &o, nil
}
