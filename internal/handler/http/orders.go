package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/orders"
	"github.com/utafrali/storefront/pkg/httputil"
)

// OrdersHandler handles checkout and the shopper's order history.
type OrdersHandler struct {
	service *orders.Service
	logger  *slog.Logger
}

// NewOrdersHandler creates a new orders HTTP handler.
func NewOrdersHandler(svc *orders.Service, logger *slog.Logger) *OrdersHandler {
	return &OrdersHandler{service: svc, logger: logger}
}

// List handles GET /api/v1/orders. Failures yield an empty list.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, h.service.MyOrders(r.Context()))
}

// Checkout handles POST /api/v1/orders
func (h *OrdersHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var in orders.CheckoutInput
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}
	order, err := h.service.Checkout(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// Cancel handles POST /api/v1/orders/{id}/cancel
func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, order)
}
