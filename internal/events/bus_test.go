package events

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) channels() []Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Channel, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Channel
	}
	return out
}

func TestBus_DeliversToChannelSubscribers(t *testing.T) {
	bus := NewBus(nil)
	var cart, all recorder
	bus.Subscribe(CartUpdated, cart.handle)
	bus.SubscribeAll(all.handle)

	bus.Publish(context.Background(), CartUpdated, CartUpdatedPayload{Count: 2, Total: "26"})
	bus.Publish(context.Background(), ThemeChanged, ThemeChangedPayload{Theme: "dark"})

	assert.Equal(t, []Channel{CartUpdated}, cart.channels())
	assert.Equal(t, []Channel{CartUpdated, ThemeChanged}, all.channels())
	require.Len(t, cart.events, 1)
	assert.Equal(t, CartUpdatedPayload{Count: 2, Total: "26"}, cart.events[0].Payload)
	assert.False(t, cart.events[0].At.IsZero())
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)
	var r recorder
	unsubscribe := bus.Subscribe(LanguageChanged, r.handle)

	bus.Publish(context.Background(), LanguageChanged, nil)
	unsubscribe()
	unsubscribe()
	bus.Publish(context.Background(), LanguageChanged, nil)

	assert.Len(t, r.channels(), 1)
}

func TestBus_SubscriptionOrder(t *testing.T) {
	bus := NewBus(nil)
	var order []int
	for i := range 3 {
		bus.Subscribe(FavoritesUpdated, func(context.Context, Event) { order = append(order, i) })
	}

	bus.Publish(context.Background(), FavoritesUpdated, nil)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestBus_PanickingHandlerIsIsolated(t *testing.T) {
	bus := NewBus(nil)
	var r recorder
	bus.Subscribe(Notification, func(context.Context, Event) { panic("boom") })
	bus.Subscribe(Notification, r.handle)

	assert.NotPanics(t, func() {
		bus.Notify(context.Background(), LevelError, "failed")
	})
	require.Len(t, r.events, 1)
	assert.Equal(t, NotificationPayload{Level: LevelError, Message: "failed"}, r.events[0].Payload)
}

func TestBus_HandlerMayUnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus(nil)
	calls := 0
	var unsubscribe func()
	unsubscribe = bus.Subscribe(ViewModeChanged, func(context.Context, Event) {
		calls++
		unsubscribe()
	})

	bus.Publish(context.Background(), ViewModeChanged, ViewModeChangedPayload{ViewMode: ViewList})
	bus.Publish(context.Background(), ViewModeChanged, ViewModeChangedPayload{ViewMode: ViewGrid})
	assert.Equal(t, 1, calls)
}

func TestParseChannel(t *testing.T) {
	for _, c := range Channels() {
		got, ok := ParseChannel(string(c))
		assert.True(t, ok)
		assert.Equal(t, c, got)
	}
	_, ok := ParseChannel("orderPlaced")
	assert.False(t, ok)
}
