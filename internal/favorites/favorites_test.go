package favorites

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/events"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/pkg/validator"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, st storage.Store) (*Store, *events.Bus) {
	t.Helper()
	bus := events.NewBus(newTestLogger())
	s := New(st, bus, newTestLogger())
	require.NoError(t, s.Load(context.Background()))
	return s, bus
}

var mug = domain.FavoriteItem{ID: "p1", Name: "Mug", Price: 12.5}

func TestStore_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, storage.NewMemory())

	added, err := s.Add(ctx, mug)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Add(ctx, mug)
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, []domain.FavoriteItem{mug}, s.Items())
	assert.True(t, s.Contains("p1"))
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, bus := newTestStore(t, storage.NewMemory())
	var notes []events.Event
	bus.Subscribe(events.Notification, func(_ context.Context, ev events.Event) { notes = append(notes, ev) })

	_, err := s.Add(ctx, mug)
	require.NoError(t, err)
	_, err = s.Add(ctx, domain.FavoriteItem{ID: "p2", Name: "Tee"})
	require.NoError(t, err)

	removed, err := s.Remove(ctx, "p1", "Mug")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Remove(ctx, "p1", "Mug")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.False(t, s.Contains("p1"))
	assert.True(t, s.Contains("p2"))
	assert.Equal(t, 1, s.Count())
	require.Len(t, notes, 1)
	assert.Equal(t, events.NotificationPayload{Level: events.LevelSuccess, Message: "Mug removed from favorites"}, notes[0].Payload)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	s, _ := newTestStore(t, st)
	_, err := s.Add(ctx, mug)
	require.NoError(t, err)

	raw, err := st.Get(ctx, storage.KeyFavorites)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p1","name":"Mug","price":12.5}]`, raw)

	other, _ := newTestStore(t, st)
	assert.True(t, other.Contains("p1"))

	require.NoError(t, other.Clear(ctx))
	raw, err = st.Get(ctx, storage.KeyFavorites)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, raw)
}

func TestStore_LoadToleratesBadData(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	require.NoError(t, st.Set(ctx, storage.KeyFavorites, `{not json`))

	s, _ := newTestStore(t, st)
	assert.Empty(t, s.Items())

	require.NoError(t, st.Set(ctx, storage.KeyFavorites, `[{"id":"a"},{"id":"a"},{"id":""},{"id":"b"}]`))
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, 2, s.Count())
}

func TestStore_AddValidates(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemory())

	_, err := s.Add(context.Background(), domain.FavoriteItem{Name: "nameless"})
	var valErr *validator.ValidationError
	assert.ErrorAs(t, err, &valErr)
	assert.Zero(t, s.Count())
}

func TestStore_AnnouncesCount(t *testing.T) {
	ctx := context.Background()
	s, bus := newTestStore(t, storage.NewMemory())
	var counts []int
	bus.Subscribe(events.FavoritesUpdated, func(_ context.Context, ev events.Event) {
		counts = append(counts, ev.Payload.(events.FavoritesUpdatedPayload).Count)
	})

	_, _ = s.Add(ctx, mug)
	_, _ = s.Add(ctx, mug)
	_, _ = s.Remove(ctx, "p1", "")
	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, []int{1, 0, 0}, counts)
}

func TestStore_WatchReloadsExternalChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	writer, err := storage.NewFile(dir, newTestLogger())
	require.NoError(t, err)
	reader, err := storage.NewFile(dir, newTestLogger())
	require.NoError(t, err)

	s, bus := newTestStore(t, reader)
	var mu sync.Mutex
	updated := 0
	bus.Subscribe(events.FavoritesUpdated, func(context.Context, events.Event) {
		mu.Lock()
		updated++
		mu.Unlock()
	})
	require.NoError(t, s.Watch(ctx, reader))

	require.NoError(t, writer.Set(ctx, storage.KeyFavorites, `[{"id":"p9","name":"Lamp"}]`))

	assert.Eventually(t, func() bool { return s.Contains("p9") }, 3*time.Second, 20*time.Millisecond)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return updated > 0
	}, 3*time.Second, 20*time.Millisecond)
}
