package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
)

// CartHandler handles HTTP requests for cart endpoints. Quantities are
// checked against the stock of the product the line refers to.
type CartHandler struct {
	store   *cart.Store
	catalog Catalog
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(store *cart.Store, c Catalog, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		store:   store,
		catalog: c,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
// A quantity below one adds a single unit; an empty SKU selects the
// product's first option.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	SKU       string `json:"sku" validate:"max=100"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// UpdateQuantityRequest is the JSON request body for updating an item's quantity.
type UpdateQuantityRequest struct {
	SKU      string `json:"sku" validate:"max=100"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

// CartResponse is the cart as last reconciled with the backend.
type CartResponse struct {
	Items []domain.CartLine `json:"items"`
	Count int               `json:"count"`
	Total string            `json:"total"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w)
}

// Refresh handles POST /api/v1/cart/refresh
func (h *CartHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.store.Fetch(r.Context())
	h.writeCart(w)
}

// Summary handles GET /api/v1/cart/summary?promo=<code>
func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := cart.Summarize(h.store.Lines(), r.URL.Query().Get("promo"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, summary)
}

// AddItem handles POST /api/v1/cart/items. The quantity is clamped to the
// stock left after what the cart already holds of the same line.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeValid(w, r, &req) {
		return
	}
	key, stock, err := h.resolveLine(r, req.ProductID, req.SKU)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	left := stock - h.store.LineQuantity(key)
	if left < 1 {
		httputil.WriteError(w, r, outOfStock(stock), h.logger)
		return
	}
	quantity := cart.NewStepper(req.Quantity, left).Quantity
	if err := h.store.Add(r.Context(), key.ProductID, key.SKU, quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w)
}

// UpdateItemQuantity handles PATCH /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if !decodeValid(w, r, &req) {
		return
	}
	key, stock, err := h.resolveLine(r, chi.URLParam(r, "productId"), req.SKU)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if stock < 1 {
		httputil.WriteError(w, r, outOfStock(stock), h.logger)
		return
	}
	quantity := cart.NewStepper(req.Quantity, stock).Quantity
	if err := h.store.UpdateQuantity(r.Context(), key.ProductID, key.SKU, quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}?sku=<sku>
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if err := h.store.Remove(r.Context(), productID, r.URL.Query().Get("sku")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w)
}

// resolveLine looks the product up and returns the line key the backend
// knows it by together with the stock of the chosen option.
func (h *CartHandler) resolveLine(r *http.Request, productID, sku string) (domain.LineKey, int, error) {
	raw, err := h.catalog.Product(r.Context(), productID)
	if err != nil {
		return domain.LineKey{}, 0, fmt.Errorf("look up product %s: %w", productID, err)
	}
	p := catalog.Normalize(raw, language(r))
	sel, ok := catalog.ResolveSKU(p, sku)
	if !ok {
		return domain.LineKey{}, 0, apperrors.InvalidInput(fmt.Sprintf("product %s has no sku %q", productID, sku))
	}
	return domain.LineKey{ProductID: productID, SKU: sel.SKU(p.SKU)}, sel.MaxQuantity(), nil
}

func outOfStock(stock int) error {
	if stock < 1 {
		return apperrors.Conflict("out of stock")
	}
	return apperrors.Conflict(fmt.Sprintf("only %d in stock", stock))
}

func (h *CartHandler) writeCart(w http.ResponseWriter) {
	lines := h.store.Lines()
	if lines == nil {
		lines = []domain.CartLine{}
	}
	httputil.WriteData(w, CartResponse{
		Items: lines,
		Count: h.store.Count(),
		Total: cart.Total(lines).StringFixed(2),
	})
}
