package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/preferences"
	"github.com/utafrali/storefront/pkg/httputil"
)

// PreferencesHandler exposes the theme and language of the session.
type PreferencesHandler struct {
	sync   *preferences.Synchronizer
	logger *slog.Logger
}

// NewPreferencesHandler creates a new preferences HTTP handler.
func NewPreferencesHandler(s *preferences.Synchronizer, logger *slog.Logger) *PreferencesHandler {
	return &PreferencesHandler{sync: s, logger: logger}
}

// SetThemeRequest selects an explicit theme.
type SetThemeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

// SetSystemThemeRequest reports the operating system color scheme.
type SetSystemThemeRequest struct {
	Dark bool `json:"dark"`
}

// SetLanguageRequest selects the display language.
type SetLanguageRequest struct {
	Language string `json:"language" validate:"required,lang"`
}

// Get handles GET /api/v1/preferences
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, h.sync.State())
}

// SetTheme handles PUT /api/v1/preferences/theme
func (h *PreferencesHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req SetThemeRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.sync.SetTheme(r.Context(), preferences.Theme(req.Theme)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, h.sync.State())
}

// ToggleTheme handles POST /api/v1/preferences/theme/toggle
func (h *PreferencesHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sync.ToggleTheme(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, h.sync.State())
}

// SetSystemTheme handles PUT /api/v1/preferences/system-theme
func (h *PreferencesHandler) SetSystemTheme(w http.ResponseWriter, r *http.Request) {
	var req SetSystemThemeRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := h.sync.SetSystemTheme(r.Context(), req.Dark); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, h.sync.State())
}

// SetLanguage handles PUT /api/v1/preferences/language
func (h *PreferencesHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req SetLanguageRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.sync.SetLanguage(r.Context(), req.Language); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, h.sync.State())
}
