package model

import "time"

// WarehouseTypePosti is the catalog type of warehouses fulfilled by the
// external provider. Products tagged with such a warehouse are
// provider-sourced for shipping purposes.
const WarehouseTypePosti = "Posti"

// Product is the local mirror of a storefront product, enriched with the
// warehouse source tag written during stock sync.
type Product struct {
	SKU      string
	Name     string
	Quantity int
	// Warehouse is the identifier of the warehouse currently holding this
	// product's stock. Empty means the product is not warehouse-sourced.
	Warehouse string
	UpdatedAt time.Time
}

// Warehouse is one entry of the provider's warehouse catalog.
type Warehouse struct {
	ID   string
	Name string
	Type string
}

// StockChange is one record from the warehouse API's incremental stock feed.
type StockChange struct {
	SKU         string
	ProductName string
	Quantity    int
	WarehouseID string
	ChangedAt   time.Time
}
