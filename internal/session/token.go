// Package session holds the shopper's bearer token and the identity decoded
// from it. A token is only usable while it decodes as a JWT and its expiry is
// in the future; expired tokens are removed from storage when read.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/storage"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Claims are the identity claims the backend signs into its tokens. Older
// tokens nest the expiry under "default".
type Claims struct {
	ID      string         `json:"id"`
	UserID  string         `json:"userId"`
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Phone   string         `json:"phone"`
	Role    string         `json:"role"`
	Default *defaultClaims `json:"default,omitempty"`
	jwt.RegisteredClaims
}

type defaultClaims struct {
	ExpiresAt *jwt.NumericDate `json:"exp,omitempty"`
}

// Expiry returns "exp", else "default.exp".
func (c *Claims) Expiry() (time.Time, bool) {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time, true
	}
	if c.Default != nil && c.Default.ExpiresAt != nil {
		return c.Default.ExpiresAt.Time, true
	}
	return time.Time{}, false
}

// User returns the identity carried by the token.
func (c *Claims) User() domain.User {
	id := c.ID
	if id == "" {
		id = c.UserID
	}
	if id == "" {
		id = c.Subject
	}
	return domain.User{ID: id, Name: c.Name, Email: c.Email, Phone: c.Phone, Role: c.Role}
}

var (
	errNoExpiry = errors.New("token carries no expiry")
	errExpired  = errors.New("token expired")
)

// Tokens reads and writes the persisted bearer token.
type Tokens struct {
	store  storage.Store
	parser *jwt.Parser
	now    func() time.Time
	logger *slog.Logger
}

// NewTokens returns a token holder over store.
func NewTokens(store storage.Store, logger *slog.Logger) *Tokens {
	return &Tokens{
		store:  store,
		parser: jwt.NewParser(),
		now:    time.Now,
		logger: logger,
	}
}

// Decode parses token without verifying its signature and checks expiry.
// The signature is the backend's concern; the client only needs the claims.
func (t *Tokens) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := t.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	exp, ok := claims.Expiry()
	if !ok {
		return nil, errNoExpiry
	}
	if !exp.After(t.now()) {
		return nil, errExpired
	}
	return claims, nil
}

// Load returns the stored token and its claims. A stored token that no
// longer validates is deleted and reported as Unauthorized.
func (t *Tokens) Load(ctx context.Context) (string, *Claims, error) {
	token, ok, err := storage.Lookup(ctx, t.store, storage.KeyToken)
	if err != nil {
		return "", nil, fmt.Errorf("load token: %w", err)
	}
	if !ok || token == "" {
		return "", nil, apperrors.Unauthorized("not logged in")
	}

	claims, err := t.Decode(token)
	if err != nil {
		t.logger.InfoContext(ctx, "discarding stored token", slog.String("reason", err.Error()))
		if derr := t.store.Delete(ctx, storage.KeyToken); derr != nil {
			t.logger.WarnContext(ctx, "failed to delete stored token", slog.String("error", derr.Error()))
		}
		return "", nil, apperrors.Unauthorized("session expired")
	}
	return token, claims, nil
}

// Token returns the bearer token to attach to backend calls, or "" when no
// valid token is stored.
func (t *Tokens) Token(ctx context.Context) string {
	token, _, err := t.Load(ctx)
	if err != nil {
		return ""
	}
	return token
}

// Save persists token.
func (t *Tokens) Save(ctx context.Context, token string) error {
	if err := t.store.Set(ctx, storage.KeyToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear removes the stored token.
func (t *Tokens) Clear(ctx context.Context) error {
	if err := t.store.Delete(ctx, storage.KeyToken); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
