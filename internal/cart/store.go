// Package cart is the local read-through cache of the shopper's server-side
// cart. Every write is followed by a re-read of the authoritative cart; the
// store never merges local patches with server responses.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/events"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_fetch_total",
		Help: "Cart fetches by result (ok, failed, stale).",
	}, []string{"result"})

	mutationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Cart writes by operation and result.",
	}, []string{"operation", "result"})
)

// Notification texts shown when a cart call fails.
const (
	msgFetchFailed  = "Could not load your cart"
	msgUpdateFailed = "Could not update your cart"
)

// Backend is the subset of the REST client the cart needs.
type Backend interface {
	Cart(ctx context.Context) ([]domain.RawCartItem, error)
	AddToCart(ctx context.Context, productID, sku string, quantity int) error
	RemoveFromCart(ctx context.Context, productID, sku string) error
	UpdateCartQuantity(ctx context.Context, productID, sku string, quantity int) error
	ClearCart(ctx context.Context) error
}

// Store holds the cart lines of the last applied fetch.
type Store struct {
	backend Backend
	bus     *events.Bus
	logger  *slog.Logger

	mu       sync.RWMutex
	lines    []domain.CartLine
	seq      uint64
	applied  uint64
	inflight context.CancelFunc
}

// NewStore creates an empty cart store. Call Fetch to load it.
func NewStore(backend Backend, bus *events.Bus, logger *slog.Logger) *Store {
	return &Store{
		backend: backend,
		bus:     bus,
		logger:  logger,
		lines:   []domain.CartLine{},
	}
}

// Listen re-fetches the cart whenever cartUpdated is published by someone
// other than this store. It returns the unsubscribe func.
func (s *Store) Listen() func() {
	return s.bus.Subscribe(events.CartUpdated, func(ctx context.Context, ev events.Event) {
		if _, own := ev.Payload.(events.CartUpdatedPayload); own {
			return
		}
		s.Fetch(ctx)
	})
}

// Fetch replaces the local lines with the authoritative cart and returns
// them. A newer Fetch cancels an older in-flight one, and a response is
// applied only if no newer response was applied before it. Any failure other
// than cancellation empties the cart and publishes a notification.
func (s *Store) Fetch(ctx context.Context) []domain.CartLine {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.seq++
	id := s.seq
	if s.inflight != nil {
		s.inflight()
	}
	s.inflight = cancel
	s.mu.Unlock()

	raws, err := s.backend.Cart(ctx)

	s.mu.Lock()
	if id == s.seq {
		s.inflight = nil
	}
	if id <= s.applied || (err != nil && (id != s.seq || errors.Is(err, context.Canceled))) {
		s.mu.Unlock()
		fetchTotal.WithLabelValues("stale").Inc()
		logger.WithContext(ctx, s.logger).DebugContext(ctx, "dropping superseded cart response",
			slog.Uint64("request_id", id))
		return s.Lines()
	}
	s.applied = id
	if err != nil {
		s.lines = []domain.CartLine{}
	} else {
		s.lines = LinesFromRaw(raws, languageOf(ctx))
	}
	lines := cloneLines(s.lines)
	s.mu.Unlock()

	if err != nil {
		fetchTotal.WithLabelValues("failed").Inc()
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "cart fetch failed",
			slog.String("error", err.Error()),
			slog.String("kind", apperrors.Classify(err).String()),
		)
		s.bus.Notify(ctx, events.LevelError, msgFetchFailed)
		return lines
	}
	fetchTotal.WithLabelValues("ok").Inc()
	return lines
}

// Add posts quantity units of the product's sku. A quantity below one adds
// a single unit.
func (s *Store) Add(ctx context.Context, productID, sku string, quantity int) error {
	if productID == "" {
		return apperrors.InvalidInput("product id is required")
	}
	if quantity < 1 {
		quantity = 1
	}
	return s.mutate(ctx, "add", func(ctx context.Context) error {
		return s.backend.AddToCart(ctx, productID, sku, quantity)
	})
}

// Remove deletes one line.
func (s *Store) Remove(ctx context.Context, productID, sku string) error {
	if productID == "" {
		return apperrors.InvalidInput("product id is required")
	}
	return s.mutate(ctx, "remove", func(ctx context.Context) error {
		return s.backend.RemoveFromCart(ctx, productID, sku)
	})
}

// UpdateQuantity sets the quantity of one line. Quantities below one are
// rejected; use Remove to drop a line.
func (s *Store) UpdateQuantity(ctx context.Context, productID, sku string, quantity int) error {
	if productID == "" {
		return apperrors.InvalidInput("product id is required")
	}
	if quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}
	return s.mutate(ctx, "update", func(ctx context.Context) error {
		return s.backend.UpdateCartQuantity(ctx, productID, sku, quantity)
	})
}

// Clear deletes the whole cart.
func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, "clear", s.backend.ClearCart)
}

// mutate runs one write, then re-reads the cart and announces cartUpdated.
// A failed write leaves the local lines untouched, publishes a notification
// and returns the error.
func (s *Store) mutate(ctx context.Context, op string, write func(context.Context) error) error {
	if err := write(ctx); err != nil {
		mutationTotal.WithLabelValues(op, apperrors.Classify(err).String()).Inc()
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "cart write failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		if !errors.Is(err, context.Canceled) {
			s.bus.Notify(ctx, events.LevelError, msgUpdateFailed)
		}
		return fmt.Errorf("cart %s: %w", op, err)
	}
	mutationTotal.WithLabelValues(op, "ok").Inc()

	s.Fetch(ctx)
	s.bus.Publish(ctx, events.CartUpdated, events.CartUpdatedPayload{
		Count: s.Count(),
		Total: s.Total().StringFixed(2),
	})
	return nil
}

// Lines returns a copy of the current lines.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLines(s.lines)
}

// Total is the sum of unit price × quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Total(s.lines)
}

// Count is the total number of units in the cart.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// ItemQuantity returns the quantity of the first line whose product id or
// line id equals id, or 0.
func (s *Store) ItemQuantity(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := find(s.lines, id); ok {
		return l.Quantity
	}
	return 0
}

// LineQuantity returns the quantity of the line addressed by key, or 0.
func (s *Store) LineQuantity(key domain.LineKey) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.lines {
		if l.Key() == key {
			return l.Quantity
		}
	}
	return 0
}

// IsInCart reports whether any line matches id by product id or line id.
func (s *Store) IsInCart(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := find(s.lines, id)
	return ok
}

// Total sums unit price × quantity over lines.
func Total(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func find(lines []domain.CartLine, id string) (domain.CartLine, bool) {
	if id == "" {
		return domain.CartLine{}, false
	}
	for _, l := range lines {
		if l.ProductID == id || l.ID == id {
			return l, true
		}
	}
	return domain.CartLine{}, false
}

func cloneLines(lines []domain.CartLine) []domain.CartLine {
	return append(make([]domain.CartLine, 0, len(lines)), lines...)
}

func languageOf(ctx context.Context) domain.Language {
	return domain.ParseLanguage(logger.LanguageFromContext(ctx))
}
