// Package events implements the named channels independent parts of the
// storefront use to tell each other that shared state changed.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Channel names an event stream.
type Channel string

const (
	CartUpdated         Channel = "cartUpdated"
	ViewModeChanged     Channel = "viewModeChanged"
	ToggleProductFilter Channel = "toggleProductFilter"
	LanguageChanged     Channel = "languageChanged"
	ThemeChanged        Channel = "themeChanged"
	FavoritesUpdated    Channel = "favoritesUpdated"
	Notification        Channel = "notification"
)

// Channels lists every known channel.
func Channels() []Channel {
	return []Channel{
		CartUpdated, ViewModeChanged, ToggleProductFilter, LanguageChanged,
		ThemeChanged, FavoritesUpdated, Notification,
	}
}

// ParseChannel returns the channel named s.
func ParseChannel(s string) (Channel, bool) {
	for _, c := range Channels() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Event is one published message.
type Event struct {
	Channel Channel   `json:"channel"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Handler receives events. It runs on the publisher's goroutine and must not
// block.
type Handler func(ctx context.Context, ev Event)

type subscription struct {
	id      uint64
	channel Channel // empty for all channels
	handler Handler
}

// Bus delivers each published event synchronously to every subscriber of its
// channel, in subscription order.
type Bus struct {
	logger *slog.Logger

	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
}

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers h for ch. The returned function removes it and is safe
// to call more than once.
func (b *Bus) Subscribe(ch Channel, h Handler) (unsubscribe func()) {
	return b.add(ch, h)
}

// SubscribeAll registers h for every channel.
func (b *Bus) SubscribeAll(h Handler) (unsubscribe func()) {
	return b.add("", h)
}

func (b *Bus) add(ch Channel, h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, channel: ch, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers payload on ch. A panicking handler is logged and does not
// prevent delivery to the remaining subscribers.
func (b *Bus) Publish(ctx context.Context, ch Channel, payload any) {
	ev := Event{Channel: ch, Payload: payload, At: time.Now().UTC()}

	b.mu.RLock()
	targets := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.channel == "" || s.channel == ch {
			targets = append(targets, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range targets {
		b.deliver(ctx, h, ev)
	}
}

func (b *Bus) deliver(ctx context.Context, h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "event handler panicked",
				slog.String("channel", string(ev.Channel)),
				slog.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	h(ctx, ev)
}

// Notify publishes a transient user-facing notification.
func (b *Bus) Notify(ctx context.Context, level Level, message string) {
	b.Publish(ctx, Notification, NotificationPayload{Level: level, Message: message})
}
