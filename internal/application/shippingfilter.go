package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// ShippingFilter restricts a cart's shipping rates to the provider's own
// methods when any cart item's stock is fulfilled by a provider warehouse.
type ShippingFilter struct {
	products   driven.ProductStore
	warehouses driven.WarehouseStore
	logger     *slog.Logger
}

// NewShippingFilter creates a ShippingFilter.
func NewShippingFilter(products driven.ProductStore, warehouses driven.WarehouseStore, logger *slog.Logger) *ShippingFilter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShippingFilter{
		products:   products,
		warehouses: warehouses,
		logger:     logger,
	}
}

// FilterRates returns the rates eligible for the given cart. A cart with no
// provider-sourced item passes through unchanged. A provider-sourced cart is
// narrowed to rates whose ID contains the provider marker, which may be an
// empty set. Classification problems (unknown product, missing tag, lookup
// errors) count as "not provider-sourced"; rate computation never fails.
func (f *ShippingFilter) FilterRates(ctx context.Context, items []model.CartItem, rates []model.ShippingRate) []model.ShippingRate {
	if !f.providerSourced(ctx, items) {
		return rates
	}

	filtered := make([]model.ShippingRate, 0, len(rates))
	for _, rate := range rates {
		if strings.Contains(strings.ToLower(rate.ID), model.PostiRateMarker) {
			filtered = append(filtered, rate)
		}
	}

	f.logger.Debug("shipping rates filtered", "in", len(rates), "out", len(filtered))
	return filtered
}

// providerSourced reports whether any item's product is tagged with a
// warehouse classified as the provider type.
func (f *ShippingFilter) providerSourced(ctx context.Context, items []model.CartItem) bool {
	for _, item := range items {
		product, err := f.products.GetBySKU(ctx, item.SKU)
		if err != nil {
			f.logger.Error("product lookup failed during rate filtering", "sku", item.SKU, "error", err)
			continue
		}
		if product == nil || product.Warehouse == "" {
			continue
		}

		typ, err := f.warehouses.GetType(ctx, product.Warehouse)
		if err != nil {
			f.logger.Error("warehouse lookup failed during rate filtering", "warehouse", product.Warehouse, "error", err)
			continue
		}
		if typ == model.WarehouseTypePosti {
			return true
		}
	}

	return false
}
