package domain

import "github.com/shopspring/decimal"

// CartLine is one server-authoritative cart entry, keyed by (ProductID, SKU).
type CartLine struct {
	ID        string          `json:"id,omitempty"`
	ProductID string          `json:"productId"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Category  string          `json:"category,omitempty"`
	Brand     string          `json:"brand,omitempty"`
	ColorHex  string          `json:"colorHex,omitempty"`
	Label     string          `json:"label,omitempty"`
}

// Key identifies the line within a cart.
func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, SKU: l.SKU}
}

// Subtotal is UnitPrice × Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineKey addresses a cart line on the backend.
type LineKey struct {
	ProductID string `json:"productId" validate:"required"`
	SKU       string `json:"sku"`
}

// FavoriteItem is a client-persisted favorite, keyed by product id.
type FavoriteItem struct {
	ID       string  `json:"id" validate:"required"`
	Name     string  `json:"name"`
	Image    string  `json:"image,omitempty"`
	Price    float64 `json:"price"`
	Brand    string  `json:"brand,omitempty"`
	Category string  `json:"category,omitempty"`
}
