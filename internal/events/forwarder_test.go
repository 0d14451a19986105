package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

type published struct {
	topic string
	event *kafka.Event
}

type fakePublisher struct {
	mu   sync.Mutex
	got  []published
	err  error
	sent chan struct{}
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{sent: make(chan struct{}, 16)}
}

func (p *fakePublisher) Publish(_ context.Context, topic string, e *kafka.Event) error {
	p.mu.Lock()
	p.got = append(p.got, published{topic: topic, event: e})
	p.mu.Unlock()
	p.sent <- struct{}{}
	return p.err
}

func (p *fakePublisher) wait(t *testing.T) {
	t.Helper()
	select {
	case <-p.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for publish")
	}
}

func TestForwarder_PublishesToChannelTopic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := newFakePublisher()
	bus := NewBus(nil)
	fwd := NewForwarder(pub, "session-1", 8, nil)
	detach := fwd.Attach(bus, CartUpdated, LanguageChanged)
	defer detach()
	go fwd.Run(ctx)

	reqCtx := logger.WithCorrelationID(context.Background(), "corr-1")
	reqCtx = logger.WithLanguage(reqCtx, "ar")
	bus.Publish(reqCtx, CartUpdated, CartUpdatedPayload{Count: 3, Total: "42.5"})
	bus.Publish(reqCtx, ThemeChanged, ThemeChangedPayload{Theme: "dark"})
	pub.wait(t)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.got, 1)
	got := pub.got[0]
	assert.Equal(t, "storefront.cartUpdated", got.topic)
	assert.Equal(t, "cartUpdated", got.event.Channel)
	assert.Equal(t, "session-1", got.event.SessionID)
	assert.Equal(t, Source, got.event.Source)
	assert.Equal(t, "corr-1", got.event.CorrelationID)
	assert.Equal(t, "ar", got.event.Metadata["language"])

	var payload CartUpdatedPayload
	require.NoError(t, got.event.DecodeData(&payload))
	assert.Equal(t, CartUpdatedPayload{Count: 3, Total: "42.5"}, payload)
}

func TestForwarder_AllChannelsAndErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := newFakePublisher()
	pub.err = errors.New("broker down")
	bus := NewBus(nil)
	fwd := NewForwarder(pub, "s", 8, nil)
	fwd.Attach(bus)
	go fwd.Run(ctx)

	bus.Publish(context.Background(), ToggleProductFilter, nil)
	pub.wait(t)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Equal(t, "storefront.toggleProductFilter", pub.got[0].topic)
}

func TestForwarder_DropsWhenQueueFull(t *testing.T) {
	pub := newFakePublisher()
	bus := NewBus(nil)
	fwd := NewForwarder(pub, "s", 1, nil)
	fwd.Attach(bus, Notification)

	bus.Notify(context.Background(), LevelInfo, "one")
	assert.NotPanics(t, func() {
		bus.Notify(context.Background(), LevelInfo, "two")
	})
	assert.Len(t, fwd.queue, 1)
}
