package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

type bilingual struct {
	EN string `json:"en"`
	AR string `json:"ar"`
}

type orderAddress struct {
	Address    bilingual `json:"address"`
	City       bilingual `json:"city"`
	Country    bilingual `json:"country"`
	PostalCode string    `json:"postalCode"`
}

type createOrderRequest struct {
	ShippingAddress orderAddress `json:"shippingAddress"`
	Notes           string       `json:"notes"`
}

// CreateOrder converts the current cart into an order. The created order is
// returned when the backend echoes it; otherwise the zero Order.
func (c *Client) CreateOrder(ctx context.Context, addr domain.ShippingAddress, notes string) (domain.Order, error) {
	body := createOrderRequest{
		ShippingAddress: orderAddress{
			Address:    bilingual{EN: addr.AddressEN, AR: addr.AddressAR},
			City:       bilingual{EN: addr.CityEN, AR: addr.CityAR},
			Country:    bilingual{EN: addr.CountryEN, AR: addr.CountryAR},
			PostalCode: addr.PostalCode,
		},
		Notes: notes,
	}
	raw, err := c.call(ctx, "orders.create", http.MethodPost, "/orders", "", body)
	if err != nil {
		return domain.Order{}, err
	}

	var order domain.Order
	doc := unwrapData(raw)
	if v, ok := member(doc, "order"); ok && truthy(v) {
		doc = v
	}
	_ = json.Unmarshal(doc, &order)
	return order, nil
}

// MyOrders lists the shopper's orders from "data.data.orders" (or the
// shallower shapes).
func (c *Client) MyOrders(ctx context.Context) ([]domain.Order, error) {
	raw, err := c.call(ctx, "orders.mine", http.MethodGet, "/orders/myorders", "", nil)
	if err != nil {
		return nil, err
	}
	list, ok := firstArray(raw,
		[]string{"data", "data", "orders"},
		[]string{"data", "orders"},
		[]string{"orders"},
	)
	if !ok {
		return []domain.Order{}, nil
	}
	return domain.DecodeList[domain.Order](list), nil
}

// CancelOrder asks the backend to cancel a pending order.
func (c *Client) CancelOrder(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("order id is required")
	}
	_, err := c.call(ctx, "orders.cancel", http.MethodPut, "/orders/"+url.PathEscape(id)+"/cancel", "", nil)
	return err
}
