package domain

import "time"

// Order status values the storefront acts on.
const (
	OrderPending   = "pending"
	OrderCancelled = "cancelled"
)

// ShippingAddress is the bilingual address submitted at checkout.
type ShippingAddress struct {
	AddressEN  string `json:"address_en" validate:"required,max=300"`
	AddressAR  string `json:"address_ar" validate:"required,max=300"`
	CityEN     string `json:"city_en" validate:"required,max=100"`
	CityAR     string `json:"city_ar" validate:"required,max=100"`
	CountryEN  string `json:"country_en" validate:"required,max=100"`
	CountryAR  string `json:"country_ar" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
}

// OrderItem is one purchased line as reported by the backend.
type OrderItem struct {
	ID       ID            `json:"_id,omitempty"`
	Product  OrderProduct  `json:"product"`
	Quantity Number        `json:"quantity"`
	Price    Number        `json:"price"`
	SKU      string        `json:"sku,omitempty"`
	Name     LocalizedText `json:"productName,omitempty"`
}

// OrderProduct is the populated product reference of an order item.
type OrderProduct struct {
	ID     ID            `json:"_id,omitempty"`
	Name   LocalizedText `json:"name"`
	Images []RawImage    `json:"images,omitempty"`
}

// Order is a placed order. Localized display fields are kept as sent so the
// presentation layer can render either language.
type Order struct {
	ID              ID            `json:"_id"`
	Status          string        `json:"status"`
	StatusText      string        `json:"statusText,omitempty"`
	StatusDisplay   LocalizedText `json:"statusDisplay"`
	TotalOrderPrice Number        `json:"totalOrderPrice"`
	PaymentMethod   LocalizedText `json:"paymentMethodDisplay"`
	PaymentStatus   LocalizedText `json:"paymentStatusDisplay"`
	ShippingAddress struct {
		Address    LocalizedText `json:"address"`
		City       LocalizedText `json:"city"`
		Country    LocalizedText `json:"country"`
		PostalCode string        `json:"postalCode"`
	} `json:"shippingAddress"`
	Items     []OrderItem `json:"items"`
	CartItems []OrderItem `json:"cartItems,omitempty"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Cancellable reports whether the backend accepts a cancel for this order.
func (o Order) Cancellable() bool {
	return o.Status == OrderPending
}

// Lines returns the order's items under whichever key the backend used.
func (o Order) Lines() []OrderItem {
	if len(o.Items) > 0 {
		return o.Items
	}
	return o.CartItems
}

// StatusLabel resolves the status for display.
func (o Order) StatusLabel(lang Language) string {
	if s := o.StatusDisplay.Resolve(lang); s != "" {
		return s
	}
	if o.StatusText != "" {
		return o.StatusText
	}
	return o.Status
}
