// Package orders converts the cart into orders and manages the shopper's
// order history.
package orders

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/events"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// Backend is the subset of the REST client orders need.
type Backend interface {
	CreateOrder(ctx context.Context, addr domain.ShippingAddress, notes string) (domain.Order, error)
	MyOrders(ctx context.Context) ([]domain.Order, error)
	CancelOrder(ctx context.Context, id string) error
}

// Cart is the cart the checkout drains.
type Cart interface {
	Lines() []domain.CartLine
	Clear(ctx context.Context) error
}

// CheckoutInput is the checkout form.
type CheckoutInput struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress" validate:"required"`
	Notes           string                 `json:"notes" validate:"max=1000"`
}

// Service places, lists and cancels orders. The last listing is cached so a
// cancel can update it without another round trip.
type Service struct {
	backend Backend
	cart    Cart
	bus     *events.Bus
	logger  *slog.Logger

	mu     sync.RWMutex
	orders []domain.Order
}

// NewService creates an order service.
func NewService(backend Backend, cart Cart, bus *events.Bus, logger *slog.Logger) *Service {
	return &Service{
		backend: backend,
		cart:    cart,
		bus:     bus,
		logger:  logger,
		orders:  []domain.Order{},
	}
}

// Checkout places an order for the current cart and then clears the cart.
// A failure to clear the cart after the order was placed is logged only.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (domain.Order, error) {
	if err := validator.Validate(in); err != nil {
		return domain.Order{}, err
	}
	if len(s.cart.Lines()) == 0 {
		return domain.Order{}, apperrors.InvalidInput("cart is empty")
	}

	log := logger.WithContext(ctx, s.logger)
	order, err := s.backend.CreateOrder(ctx, in.ShippingAddress, in.Notes)
	if err != nil {
		log.WarnContext(ctx, "checkout failed",
			slog.String("error", err.Error()),
			slog.String("kind", apperrors.Classify(err).String()),
		)
		s.bus.Notify(ctx, events.LevelError, "Order failed")
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	if err := s.cart.Clear(ctx); err != nil {
		log.WarnContext(ctx, "cart not cleared after checkout",
			slog.String("order_id", string(order.ID)),
			slog.String("error", err.Error()),
		)
	}
	if order.ID != "" {
		s.mu.Lock()
		s.orders = append([]domain.Order{order}, s.orders...)
		s.mu.Unlock()
	}

	log.InfoContext(ctx, "order placed", slog.String("order_id", string(order.ID)))
	s.bus.Notify(ctx, events.LevelSuccess, "Order placed")
	return order, nil
}

// MyOrders fetches the shopper's orders. Any failure yields an empty list
// and a notification.
func (s *Service) MyOrders(ctx context.Context) []domain.Order {
	list, err := s.backend.MyOrders(ctx)
	if err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "order listing failed",
			slog.String("error", err.Error()),
			slog.String("kind", apperrors.Classify(err).String()),
		)
		s.bus.Notify(ctx, events.LevelError, "Could not load your orders")
		list = []domain.Order{}
	}

	s.mu.Lock()
	s.orders = list
	s.mu.Unlock()
	return cloneOrders(list)
}

// Orders returns the last fetched listing.
func (s *Service) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrders(s.orders)
}

// Cancel cancels a pending order from the last listing and marks it
// cancelled locally.
func (s *Service) Cancel(ctx context.Context, id string) (domain.Order, error) {
	s.mu.RLock()
	i := s.indexLocked(id)
	var order domain.Order
	if i >= 0 {
		order = s.orders[i]
	}
	s.mu.RUnlock()

	if i < 0 {
		return domain.Order{}, apperrors.NotFound("order", id)
	}
	if !order.Cancellable() {
		return domain.Order{}, apperrors.Conflict(fmt.Sprintf("order %s is %s and can no longer be cancelled", id, order.Status))
	}

	if err := s.backend.CancelOrder(ctx, id); err != nil {
		s.bus.Notify(ctx, events.LevelError, "Could not cancel the order")
		return domain.Order{}, fmt.Errorf("cancel order: %w", err)
	}

	s.mu.Lock()
	if j := s.indexLocked(id); j >= 0 {
		s.orders[j].Status = domain.OrderCancelled
		s.orders[j].StatusDisplay = domain.LocalizedText{}
		s.orders[j].StatusText = ""
		order = s.orders[j]
	}
	s.mu.Unlock()

	s.bus.Notify(ctx, events.LevelSuccess, "Order cancelled")
	return order, nil
}

func (s *Service) indexLocked(id string) int {
	for i, o := range s.orders {
		if string(o.ID) == id {
			return i
		}
	}
	return -1
}

func cloneOrders(list []domain.Order) []domain.Order {
	return append(make([]domain.Order, 0, len(list)), list...)
}
