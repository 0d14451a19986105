package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// Backend is the subset of the REST client the session needs.
type Backend interface {
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error)
}

// Manager implements login, logout and profile updates on top of Tokens.
type Manager struct {
	backend Backend
	tokens  *Tokens
	logger  *slog.Logger

	// profile overlays the token's identity with fields changed through
	// UpdateProfile since the token was issued.
	mu           sync.Mutex
	profile      domain.User
	profileToken string
}

// NewManager creates a session manager.
func NewManager(backend Backend, tokens *Tokens, logger *slog.Logger) *Manager {
	return &Manager{backend: backend, tokens: tokens, logger: logger}
}

// Login exchanges credentials for a token, persists it and returns the user
// decoded from it. A token that is already expired is rejected.
func (m *Manager) Login(ctx context.Context, creds domain.Credentials) (domain.User, error) {
	if err := validator.Validate(creds); err != nil {
		return domain.User{}, err
	}

	token, err := m.backend.Login(ctx, creds)
	if err != nil {
		return domain.User{}, fmt.Errorf("login: %w", err)
	}
	claims, err := m.tokens.Decode(token)
	if err != nil {
		return domain.User{}, apperrors.Unauthorized("invalid token received: " + err.Error())
	}
	if err := m.tokens.Save(ctx, token); err != nil {
		return domain.User{}, err
	}

	m.mu.Lock()
	m.profile = domain.User{}
	m.profileToken = token
	m.mu.Unlock()

	u := claims.User()
	logger.WithContext(ctx, m.logger).InfoContext(ctx, "shopper logged in", slog.String("user_id", u.ID))
	return u, nil
}

// Logout notifies the backend and always removes the local token, even when
// the backend call fails.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.backend.Logout(ctx); err != nil {
		logger.WithContext(ctx, m.logger).WarnContext(ctx, "backend logout failed",
			slog.String("error", err.Error()),
			slog.String("kind", apperrors.Classify(err).String()),
		)
	}

	m.mu.Lock()
	m.profile = domain.User{}
	m.profileToken = ""
	m.mu.Unlock()

	return m.tokens.Clear(ctx)
}

// Current returns the logged-in user, or an Unauthorized error.
func (m *Manager) Current(ctx context.Context) (domain.User, error) {
	token, claims, err := m.tokens.Load(ctx)
	if err != nil {
		return domain.User{}, err
	}

	u := claims.User()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profileToken == token {
		u = u.Merge(m.profile)
	}
	return u, nil
}

// Authenticated reports whether a valid token is stored.
func (m *Manager) Authenticated(ctx context.Context) bool {
	_, _, err := m.tokens.Load(ctx)
	return err == nil
}

// UpdateProfile applies a profile change and merges the backend's updated
// user into the session identity.
func (m *Manager) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error) {
	if err := validator.Validate(update); err != nil {
		return domain.User{}, err
	}
	token, _, err := m.tokens.Load(ctx)
	if err != nil {
		return domain.User{}, err
	}

	updated, err := m.backend.UpdateProfile(ctx, update)
	if err != nil {
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}

	m.mu.Lock()
	if m.profileToken != token {
		m.profile = domain.User{}
		m.profileToken = token
	}
	m.profile = m.profile.Merge(updated)
	m.mu.Unlock()

	return m.Current(ctx)
}
