package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/storefront/internal/domain"
)

type cartItemRequest struct {
	Product  string `json:"product"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type addToCartRequest struct {
	Items []cartItemRequest `json:"items"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// Cart fetches the authoritative cart lines from "data.items", "cart.items"
// or "items", whichever is present first.
func (c *Client) Cart(ctx context.Context) ([]domain.RawCartItem, error) {
	raw, err := c.call(ctx, "cart.get", http.MethodGet, "/cart", "", nil)
	if err != nil {
		return nil, err
	}
	items, ok := firstArray(raw,
		[]string{"data", "items"},
		[]string{"cart", "items"},
		[]string{"items"},
		[]string{"data", "cart", "items"},
	)
	if !ok {
		return []domain.RawCartItem{}, nil
	}
	return domain.DecodeList[domain.RawCartItem](items), nil
}

// AddToCart adds quantity units of the product's sku.
func (c *Client) AddToCart(ctx context.Context, productID, sku string, quantity int) error {
	body := addToCartRequest{Items: []cartItemRequest{{Product: productID, SKU: sku, Quantity: quantity}}}
	_, err := c.call(ctx, "cart.add", http.MethodPost, "/cart", "", body)
	return err
}

// RemoveFromCart deletes one line.
func (c *Client) RemoveFromCart(ctx context.Context, productID, sku string) error {
	_, err := c.call(ctx, "cart.remove", http.MethodDelete, linePath(productID, sku), "", nil)
	return err
}

// UpdateCartQuantity sets the quantity of one line.
func (c *Client) UpdateCartQuantity(ctx context.Context, productID, sku string, quantity int) error {
	_, err := c.call(ctx, "cart.update", http.MethodPatch, linePath(productID, sku), "", quantityRequest{Quantity: quantity})
	return err
}

// ClearCart deletes the whole cart.
func (c *Client) ClearCart(ctx context.Context) error {
	_, err := c.call(ctx, "cart.clear", http.MethodDelete, "/cart", "", nil)
	return err
}

// linePath addresses a cart line; a missing sku leaves a trailing slash as
// the backend expects.
func linePath(productID, sku string) string {
	return "/cart/" + url.PathEscape(productID) + "/" + url.PathEscape(sku)
}
