// Package storage persists the small string values a shopper session keeps
// between runs (theme, language, favorites, token) and reports changes made
// by other processes sharing the same backing store.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Well-known keys.
const (
	KeyTheme     = "theme-preference"
	KeyLanguage  = "i18nextLng"
	KeyFavorites = "favorites"
	KeyToken     = "token"
)

// Drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Store is a string key/value store. Get returns an error wrapping
// apperrors.ErrNotFound when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Change is a write observed on the backing store.
type Change struct {
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}

// Watcher is implemented by stores that can report writes made by other
// processes. Writes made through the same Store value are not reported, so
// callers that need to observe their own writes must poll.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Change, error)
}

// Lookup returns the value of key and whether it exists. Errors other than
// not-found are returned as-is.
func Lookup(ctx context.Context, s Store, key string) (string, bool, error) {
	v, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

// GetJSON decodes the value of key into dst. It reports false when the key
// is absent.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	v, ok, err := Lookup(ctx, s, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}

func notFound(key string) error {
	return apperrors.NotFound("storage key", key)
}

func logChange(ctx context.Context, logger *slog.Logger, driver string, c Change) {
	logger.DebugContext(ctx, "external storage change",
		slog.String("driver", driver),
		slog.String("key", c.Key),
		slog.Bool("deleted", c.Deleted),
	)
}
