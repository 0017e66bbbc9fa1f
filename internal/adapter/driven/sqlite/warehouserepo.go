package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.WarehouseStore = (*WarehouseRepo)(nil)

// WarehouseRepo is the SQLite implementation of the WarehouseStore port.
// The table is a cache of the provider's catalog, refreshed on stock sync.
type WarehouseRepo struct {
	db *DB
}

// NewWarehouseRepo creates a new WarehouseRepo backed by the given DB.
func NewWarehouseRepo(db *DB) *WarehouseRepo {
	return &WarehouseRepo{db: db}
}

// ReplaceAll swaps the full catalog for the given set in one transaction.
func (r *WarehouseRepo) ReplaceAll(ctx context.Context, warehouses []model.Warehouse) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace warehouses: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM warehouses`); err != nil {
		return fmt.Errorf("clear warehouses: %w", err)
	}

	const insert = `INSERT INTO warehouses (id, name, type) VALUES (?, ?, ?)`
	for _, wh := range warehouses {
		if _, err := tx.ExecContext(ctx, insert, wh.ID, wh.Name, wh.Type); err != nil {
			return fmt.Errorf("insert warehouse %q: %w", wh.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace warehouses: %w", err)
	}

	return nil
}

// GetType returns the stock type for the given warehouse ID, or ("", nil)
// when the warehouse is unknown.
func (r *WarehouseRepo) GetType(ctx context.Context, warehouseID string) (string, error) {
	const query = `SELECT type FROM warehouses WHERE id = ?`

	var typ string
	err := r.db.Reader.QueryRowContext(ctx, query, warehouseID).Scan(&typ)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get warehouse type %q: %w", warehouseID, err)
	}

	return typ, nil
}

// ListAll returns the cached catalog ordered by ID.
func (r *WarehouseRepo) ListAll(ctx context.Context) ([]model.Warehouse, error) {
	const query = `SELECT id, name, type FROM warehouses ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []model.Warehouse
	for rows.Next() {
		var wh model.Warehouse
		if err := rows.Scan(&wh.ID, &wh.Name, &wh.Type); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		warehouses = append(warehouses, wh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate warehouses: %w", err)
	}

	return warehouses, nil
}
