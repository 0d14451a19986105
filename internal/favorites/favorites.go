// Package favorites keeps the shopper's favorite products in durable
// storage. There is no server-side copy; other instances sharing the storage
// see changes through its change feed.
package favorites

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/events"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/pkg/validator"
)

// Store is the favorites set, ordered by insertion and indexed by id.
type Store struct {
	store  storage.Store
	bus    *events.Bus
	logger *slog.Logger

	mu    sync.RWMutex
	items []domain.FavoriteItem
	index map[string]int
}

// New returns an empty store. Call Load to read the persisted set.
func New(store storage.Store, bus *events.Bus, logger *slog.Logger) *Store {
	return &Store{
		store:  store,
		bus:    bus,
		logger: logger,
		items:  []domain.FavoriteItem{},
		index:  map[string]int{},
	}
}

// Load replaces the in-memory set with the persisted one. A value that does
// not decode is treated as an empty set.
func (s *Store) Load(ctx context.Context) error {
	var items []domain.FavoriteItem
	found, err := storage.GetJSON(ctx, s.store, storage.KeyFavorites, &items)
	if err != nil {
		if !found {
			return fmt.Errorf("load favorites: %w", err)
		}
		s.logger.WarnContext(ctx, "discarding unreadable favorites", slog.String("error", err.Error()))
		items = nil
	}

	s.mu.Lock()
	s.setLocked(items)
	s.mu.Unlock()
	return nil
}

// Add inserts item unless its id is already present. It reports whether the
// set changed.
func (s *Store) Add(ctx context.Context, item domain.FavoriteItem) (bool, error) {
	if err := validator.Validate(item); err != nil {
		return false, err
	}

	s.mu.Lock()
	if _, ok := s.index[item.ID]; ok {
		s.mu.Unlock()
		return false, nil
	}
	next := append(s.snapshotLocked(), item)
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	n := len(s.items)
	s.mu.Unlock()

	s.announce(ctx, n)
	return true, nil
}

// Remove deletes the favorite with id. name is only used for the
// confirmation message. It reports whether the set changed.
func (s *Store) Remove(ctx context.Context, id, name string) (bool, error) {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	current := s.snapshotLocked()
	next := append(current[:i:i], current[i+1:]...)
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	n := len(s.items)
	s.mu.Unlock()

	if name != "" {
		s.bus.Notify(ctx, events.LevelSuccess, fmt.Sprintf("%s removed from favorites", name))
	}
	s.announce(ctx, n)
	return true, nil
}

// Clear removes every favorite.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if err := s.persistLocked(ctx, nil); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.announce(ctx, 0)
	return nil
}

// Contains reports whether id is a favorite.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Items returns the favorites in insertion order.
func (s *Store) Items() []domain.FavoriteItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Count returns the number of favorites.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Watch reloads the set whenever another instance changes it, until ctx is
// done.
func (s *Store) Watch(ctx context.Context, w storage.Watcher) error {
	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch favorites: %w", err)
	}
	go func() {
		for c := range changes {
			if c.Key != storage.KeyFavorites {
				continue
			}
			if err := s.Load(ctx); err != nil {
				s.logger.WarnContext(ctx, "favorites reload failed", slog.String("error", err.Error()))
				continue
			}
			s.announce(ctx, s.Count())
		}
	}()
	return nil
}

// persistLocked writes items and, on success, makes them the current set.
func (s *Store) persistLocked(ctx context.Context, items []domain.FavoriteItem) error {
	if items == nil {
		items = []domain.FavoriteItem{}
	}
	if err := storage.SetJSON(ctx, s.store, storage.KeyFavorites, items); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	s.setLocked(items)
	return nil
}

// setLocked installs items, keeping the first entry of any duplicated id.
func (s *Store) setLocked(items []domain.FavoriteItem) {
	s.items = make([]domain.FavoriteItem, 0, len(items))
	s.index = make(map[string]int, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		if _, dup := s.index[it.ID]; dup {
			continue
		}
		s.index[it.ID] = len(s.items)
		s.items = append(s.items, it)
	}
}

func (s *Store) snapshotLocked() []domain.FavoriteItem {
	return append(make([]domain.FavoriteItem, 0, len(s.items)+1), s.items...)
}

func (s *Store) announce(ctx context.Context, count int) {
	s.bus.Publish(ctx, events.FavoritesUpdated, events.FavoritesUpdatedPayload{Count: count})
}
