package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ProductStore = (*ProductRepo)(nil)

// ProductRepo is the SQLite implementation of the ProductStore port.
type ProductRepo struct {
	db *DB
}

// NewProductRepo creates a new ProductRepo backed by the given DB.
func NewProductRepo(db *DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// Upsert inserts or replaces a product by SKU. An empty Warehouse clears the
// warehouse source tag.
func (r *ProductRepo) Upsert(ctx context.Context, p model.Product) error {
	const query = `
		INSERT INTO products (sku, name, quantity, warehouse_id, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(sku) DO UPDATE SET
			name = excluded.name,
			quantity = excluded.quantity,
			warehouse_id = excluded.warehouse_id,
			updated_at = excluded.updated_at
	`

	var warehouse any
	if p.Warehouse != "" {
		warehouse = p.Warehouse
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		p.SKU, p.Name, p.Quantity, warehouse, formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", p.SKU, err)
	}

	return nil
}

// GetBySKU returns the product with the given SKU, or (nil, nil) when absent.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	const query = `
		SELECT sku, name, quantity, warehouse_id, updated_at
		FROM products
		WHERE sku = ?
	`

	p, err := scanProduct(r.db.Reader.QueryRowContext(ctx, query, sku))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", sku, err)
	}

	return p, nil
}

// ListAll returns all mirrored products ordered by SKU.
func (r *ProductRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	const query = `
		SELECT sku, name, quantity, warehouse_id, updated_at
		FROM products
		ORDER BY sku
	`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		p         model.Product
		warehouse sql.NullString
		updatedAt string
	)

	if err := row.Scan(&p.SKU, &p.Name, &p.Quantity, &warehouse, &updatedAt); err != nil {
		return nil, err
	}

	p.Warehouse = warehouse.String

	var err error
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}
