package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/events"
	"github.com/utafrali/storefront/internal/favorites"
	"github.com/utafrali/storefront/internal/filter"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
)

// Catalog is the read side of the REST backend.
type Catalog interface {
	Products(ctx context.Context, query string) ([]domain.RawProduct, error)
	Product(ctx context.Context, id string) (domain.RawProduct, error)
	Featured(ctx context.Context) ([]domain.RawProduct, error)
	Bestsellers(ctx context.Context) ([]domain.RawProduct, error)
	Brands(ctx context.Context) ([]domain.RawBrand, error)
	Categories(ctx context.Context) ([]domain.RawCategory, error)
}

// CatalogHandler serves normalized products, brands and categories. Listing
// failures degrade to empty lists plus a notification on the bus.
type CatalogHandler struct {
	catalog   Catalog
	filters   *filter.Sync
	cart      *cart.Store
	favorites *favorites.Store
	bus       *events.Bus
	logger    *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(c Catalog, filters *filter.Sync, cartStore *cart.Store, favs *favorites.Store, bus *events.Bus, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog:   c,
		filters:   filters,
		cart:      cartStore,
		favorites: favs,
		bus:       bus,
		logger:    logger,
	}
}

// --- Response DTOs ---

// ListingResponse is a page of the filtered product listing.
type ListingResponse struct {
	Products pagination.Result[domain.Product] `json:"products"`
	Filter   filter.Snapshot                   `json:"filter"`
}

// ProductResponse is a product detail with its resolved selection. SKU is
// the one the add-to-cart control posts; Stepper starts at the quantity of
// that line, or 1.
type ProductResponse struct {
	Product   domain.Product    `json:"product"`
	Selection catalog.Selection `json:"selection"`
	SKU       string            `json:"sku"`
	Stepper   cart.Stepper      `json:"stepper"`
	InStock   bool              `json:"inStock"`
	Colors    []catalog.Swatch  `json:"colors"`
	InCart    bool              `json:"inCart"`
	Quantity  int               `json:"quantity"`
	Favorite  bool              `json:"favorite"`
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products. The query comes from the current
// filter state; page and limit page the result.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	snap := h.filters.Snapshot()
	raws, err := h.catalog.Products(r.Context(), snap.Query)
	if err != nil {
		h.degrade(r, "products", err)
	}
	products := catalog.NormalizeAll(raws, language(r))
	httputil.WriteData(w, ListingResponse{
		Products: pagination.Slice(products, pagination.FromRequest(r)),
		Filter:   snap,
	})
}

// Featured handles GET /api/v1/products/featured
func (h *CatalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	raws, err := h.catalog.Featured(r.Context())
	if err != nil {
		h.degrade(r, "featured products", err)
	}
	httputil.WriteData(w, catalog.NormalizeAll(raws, language(r)))
}

// Bestsellers handles GET /api/v1/products/bestsellers
func (h *CatalogHandler) Bestsellers(w http.ResponseWriter, r *http.Request) {
	raws, err := h.catalog.Bestsellers(r.Context())
	if err != nil {
		h.degrade(r, "bestsellers", err)
	}
	httputil.WriteData(w, catalog.NormalizeAll(raws, language(r)))
}

// GetProduct handles GET /api/v1/products/{id}?color=<hex>
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("product id is required"), h.logger)
		return
	}

	raw, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		h.bus.Notify(r.Context(), events.LevelError, "Failed to load product")
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	p := catalog.Normalize(raw, language(r))
	colors := catalog.SelectableColors(p)
	if colors == nil {
		colors = []catalog.Swatch{}
	}
	sel := catalog.ResolveSelection(p, r.URL.Query().Get("color"))
	sku := sel.SKU(p.SKU)
	httputil.WriteData(w, ProductResponse{
		Product:   p,
		Selection: sel,
		SKU:       sku,
		Stepper:   cart.NewStepper(h.cart.LineQuantity(domain.LineKey{ProductID: p.ID, SKU: sku}), sel.MaxQuantity()),
		InStock:   sel.InStock(),
		Colors:    colors,
		InCart:    h.cart.IsInCart(p.ID),
		Quantity:  h.cart.ItemQuantity(p.ID),
		Favorite:  h.favorites.Contains(p.ID),
	})
}

// Brands handles GET /api/v1/brands
func (h *CatalogHandler) Brands(w http.ResponseWriter, r *http.Request) {
	raws, err := h.catalog.Brands(r.Context())
	if err != nil {
		h.degrade(r, "brands", err)
	}
	httputil.WriteData(w, catalog.NormalizeBrands(raws, language(r)))
}

// Categories handles GET /api/v1/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	raws, err := h.catalog.Categories(r.Context())
	if err != nil {
		h.degrade(r, "categories", err)
	}
	httputil.WriteData(w, catalog.NormalizeCategories(raws, language(r)))
}

func (h *CatalogHandler) degrade(r *http.Request, what string, err error) {
	h.logger.WarnContext(r.Context(), "catalog load failed, serving empty list",
		slog.String("resource", what),
		slog.String("kind", apperrors.Classify(err).String()),
		slog.String("error", err.Error()),
	)
	if r.Context().Err() == nil {
		h.bus.Notify(r.Context(), events.LevelError, "Failed to load "+what)
	}
}
