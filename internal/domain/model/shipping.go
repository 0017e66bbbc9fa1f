package model

// PostiRateMarker is the substring identifying the provider's own shipping
// methods among a storefront's rate identifiers. Matching is case-insensitive.
const PostiRateMarker = "posti_shipping_method"

// CartItem is one line of a storefront cart submitted for rate filtering.
type CartItem struct {
	SKU      string
	Quantity int
}

// ShippingRate is one shipping option offered to a cart.
type ShippingRate struct {
	ID        string
	Label     string
	CostCents int64
}
