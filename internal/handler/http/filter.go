package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/filter"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
)

// FilterHandler exposes the sidebar filter state and keeps it in sync with
// the listing page URL.
type FilterHandler struct {
	sync   *filter.Sync
	logger *slog.Logger
}

// NewFilterHandler creates a new filter HTTP handler.
func NewFilterHandler(s *filter.Sync, logger *slog.Logger) *FilterHandler {
	return &FilterHandler{sync: s, logger: logger}
}

// --- Request DTOs ---

// LoadFilterRequest initializes the filter state from a loaded page URL.
type LoadFilterRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

// UpdateFilterRequest carries one or more sidebar changes. Absent fields are
// left as they are.
type UpdateFilterRequest struct {
	ToggleBrand string      `json:"toggleBrand,omitempty" validate:"omitempty,max=200"`
	PriceRange  *[2]float64 `json:"priceRange,omitempty"`
	Rating      *float64    `json:"rating,omitempty"`
}

// SetCategoryRequest switches the listing category.
type SetCategoryRequest struct {
	Category string `json:"category" validate:"max=200"`
}

// FilterResponse pairs the URL change with the resulting state.
type FilterResponse struct {
	Navigation *filter.Navigation `json:"navigation,omitempty"`
	Filter     filter.Snapshot    `json:"filter"`
}

// --- Handlers ---

// Get handles GET /api/v1/filters
func (h *FilterHandler) Get(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, FilterResponse{Filter: h.sync.Snapshot()})
}

// Load handles POST /api/v1/filters/load
func (h *FilterHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req LoadFilterRequest
	if !decodeValid(w, r, &req) {
		return
	}
	nav, err := h.sync.Load(req.URL)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput(err.Error()), h.logger)
		return
	}
	h.write(w, nav)
}

// Update handles PATCH /api/v1/filters
func (h *FilterHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateFilterRequest
	if !decodeValid(w, r, &req) {
		return
	}
	nav := h.sync.Update(func(st *filter.State, b *filter.Builder) {
		if req.ToggleBrand != "" {
			st.ToggleBrand(req.ToggleBrand)
		}
		if req.PriceRange != nil {
			b.SetPriceRange(st, req.PriceRange[0], req.PriceRange[1])
		}
		if req.Rating != nil {
			b.SetRating(st, *req.Rating)
		}
	})
	h.write(w, nav)
}

// SetCategory handles PUT /api/v1/filters/category
func (h *FilterHandler) SetCategory(w http.ResponseWriter, r *http.Request) {
	var req SetCategoryRequest
	if !decodeValid(w, r, &req) {
		return
	}
	h.write(w, h.sync.SetCategory(req.Category))
}

// Reset handles POST /api/v1/filters/reset
func (h *FilterHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.write(w, h.sync.Reset())
}

func (h *FilterHandler) write(w http.ResponseWriter, nav filter.Navigation) {
	httputil.WriteData(w, FilterResponse{Navigation: &nav, Filter: h.sync.Snapshot()})
}
