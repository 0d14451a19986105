package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/events"
	"github.com/utafrali/storefront/internal/favorites"
	"github.com/utafrali/storefront/internal/filter"
	"github.com/utafrali/storefront/internal/orders"
	"github.com/utafrali/storefront/internal/preferences"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const serviceName = "storefront"

// Services are the session components the router exposes.
type Services struct {
	Catalog     Catalog
	Cart        *cart.Store
	Favorites   *favorites.Store
	Orders      *orders.Service
	Session     *session.Manager
	Preferences *preferences.Synchronizer
	Filters     *filter.Sync
	Bus         *events.Bus
}

// RouterConfig tunes the global middleware.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a chi router with all storefront routes registered. ctx
// bounds the rate limiter's background cleanup.
func NewRouter(ctx context.Context, svc Services, healthHandler *health.Handler, logger *slog.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.Language(func(*http.Request) string {
		return string(svc.Preferences.Language())
	}))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	requireSession := middleware.RequireSession(svc.Session.Authenticated)

	catalogHandler := NewCatalogHandler(svc.Catalog, svc.Filters, svc.Cart, svc.Favorites, svc.Bus, logger)
	filterHandler := NewFilterHandler(svc.Filters, logger)
	cartHandler := NewCartHandler(svc.Cart, svc.Catalog, logger)
	favoritesHandler := NewFavoritesHandler(svc.Favorites, logger)
	ordersHandler := NewOrdersHandler(svc.Orders, logger)
	sessionHandler := NewSessionHandler(svc.Session, svc.Bus, logger)
	preferencesHandler := NewPreferencesHandler(svc.Preferences, logger)
	eventsHandler := NewEventsHandler(svc.Bus, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// The event stream is long-lived and must not be compressed or timed out.
		r.Get("/events", eventsHandler.Stream)

		r.Group(func(r chi.Router) {
			if cfg.RateLimitRPS > 0 {
				r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
			}
			r.Use(chimw.Compress(5))
			r.Use(chimw.Timeout(30 * time.Second))
			r.Use(ContentTypeJSON)

			r.Post("/events/{channel}", eventsHandler.Publish)

			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/featured", catalogHandler.Featured)
			r.Get("/products/bestsellers", catalogHandler.Bestsellers)
			r.Get("/products/{id}", catalogHandler.GetProduct)
			r.Get("/brands", catalogHandler.Brands)
			r.Get("/categories", catalogHandler.Categories)

			r.Route("/filters", func(r chi.Router) {
				r.Get("/", filterHandler.Get)
				r.Post("/load", filterHandler.Load)
				r.Patch("/", filterHandler.Update)
				r.Put("/category", filterHandler.SetCategory)
				r.Post("/reset", filterHandler.Reset)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/refresh", cartHandler.Refresh)
				r.Get("/summary", cartHandler.Summary)
				r.Post("/items", cartHandler.AddItem)
				r.Patch("/items/{productId}", cartHandler.UpdateItemQuantity)
				r.Delete("/items/{productId}", cartHandler.RemoveItem)
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", favoritesHandler.List)
				r.Delete("/", favoritesHandler.Clear)
				r.With(requireSession).Post("/", favoritesHandler.Add)
				r.Delete("/{id}", favoritesHandler.Remove)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Use(requireSession)
				r.Get("/", ordersHandler.List)
				r.Post("/", ordersHandler.Checkout)
				r.Post("/{id}/cancel", ordersHandler.Cancel)
			})

			r.Route("/session", func(r chi.Router) {
				r.Post("/login", sessionHandler.Login)
				r.Post("/logout", sessionHandler.Logout)
				r.With(requireSession).Get("/me", sessionHandler.Me)
				r.With(requireSession).Patch("/profile", sessionHandler.UpdateProfile)
			})

			r.Route("/preferences", func(r chi.Router) {
				r.Get("/", preferencesHandler.Get)
				r.Put("/theme", preferencesHandler.SetTheme)
				r.Post("/theme/toggle", preferencesHandler.ToggleTheme)
				r.Put("/system-theme", preferencesHandler.SetSystemTheme)
				r.Put("/language", preferencesHandler.SetLanguage)
			})
		})
	})

	return r
}
