package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/events"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/httputil"
)

// SessionHandler handles login, logout and the shopper profile.
type SessionHandler struct {
	manager *session.Manager
	bus     *events.Bus
	logger  *slog.Logger
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(m *session.Manager, bus *events.Bus, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{manager: m, bus: bus, logger: logger}
}

// Login handles POST /api/v1/session/login. The cart belongs to the
// identity, so a successful login asks the cart store to re-read it.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if !httputil.DecodeJSON(w, r, &creds) {
		return
	}
	user, err := h.manager.Login(r.Context(), creds)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.bus.Publish(r.Context(), events.CartUpdated, nil)
	httputil.WriteData(w, user)
}

// Logout handles POST /api/v1/session/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Logout(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.bus.Publish(r.Context(), events.CartUpdated, nil)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/session/me
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.manager.Current(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, user)
}

// UpdateProfile handles PATCH /api/v1/session/profile
func (h *SessionHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update domain.ProfileUpdate
	if !httputil.DecodeJSON(w, r, &update) {
		return
	}
	user, err := h.manager.UpdateProfile(r.Context(), update)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, user)
}
