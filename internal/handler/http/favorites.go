package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/favorites"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
)

// FavoritesHandler handles HTTP requests for favorites endpoints.
type FavoritesHandler struct {
	store  *favorites.Store
	logger *slog.Logger
}

// NewFavoritesHandler creates a new favorites HTTP handler.
func NewFavoritesHandler(store *favorites.Store, logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{store: store, logger: logger}
}

// FavoritesResponse lists the favorites and whether the last call changed them.
type FavoritesResponse struct {
	Items   []domain.FavoriteItem `json:"items"`
	Count   int                   `json:"count"`
	Changed bool                  `json:"changed"`
}

// List handles GET /api/v1/favorites
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	h.write(w, false)
}

// Add handles POST /api/v1/favorites
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	var item domain.FavoriteItem
	if !httputil.DecodeJSON(w, r, &item) {
		return
	}
	changed, err := h.store.Add(r.Context(), item)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.write(w, changed)
}

// Remove handles DELETE /api/v1/favorites/{id}?name=<display name>
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("favorite id is required"), h.logger)
		return
	}
	changed, err := h.store.Remove(r.Context(), id, r.URL.Query().Get("name"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.write(w, changed)
}

// Clear handles DELETE /api/v1/favorites
func (h *FavoritesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.write(w, true)
}

func (h *FavoritesHandler) write(w http.ResponseWriter, changed bool) {
	items := h.store.Items()
	if items == nil {
		items = []domain.FavoriteItem{}
	}
	httputil.WriteData(w, FavoritesResponse{Items: items, Count: len(items), Changed: changed})
}
