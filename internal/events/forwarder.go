package events

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Source is the event source recorded on forwarded events.
const Source = "storefront"

var forwardedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storefront_events_forwarded_total",
	Help: "Bus events mirrored to Kafka, by channel and result.",
}, []string{"channel", "result"})

// Publisher is the Kafka side of the forwarder.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

type forwarded struct {
	ctx context.Context
	ev  Event
}

// Forwarder mirrors bus events to Kafka topics named storefront.<channel>.
// Bus handlers must not block, so events are queued and published by Run;
// when the queue is full the event is dropped.
type Forwarder struct {
	pub       Publisher
	sessionID string
	logger    *slog.Logger
	queue     chan forwarded
}

// NewForwarder creates a forwarder for one session.
func NewForwarder(pub Publisher, sessionID string, queueSize int, l *slog.Logger) *Forwarder {
	if l == nil {
		l = slog.Default()
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Forwarder{
		pub:       pub,
		sessionID: sessionID,
		logger:    l,
		queue:     make(chan forwarded, queueSize),
	}
}

// Attach subscribes the forwarder to channels (every channel when none are
// given) and returns a function that detaches it.
func (f *Forwarder) Attach(bus *Bus, channels ...Channel) (detach func()) {
	if len(channels) == 0 {
		return bus.SubscribeAll(f.enqueue)
	}
	unsubs := make([]func(), 0, len(channels))
	for _, ch := range channels {
		unsubs = append(unsubs, bus.Subscribe(ch, f.enqueue))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (f *Forwarder) enqueue(ctx context.Context, ev Event) {
	// The publishing request may finish before the event is sent.
	item := forwarded{ctx: context.WithoutCancel(ctx), ev: ev}
	select {
	case f.queue <- item:
	default:
		forwardedTotal.WithLabelValues(string(ev.Channel), "dropped").Inc()
		f.logger.WarnContext(ctx, "event forward queue full, dropping event",
			slog.String("channel", string(ev.Channel)),
		)
	}
}

// Run publishes queued events until ctx is done.
func (f *Forwarder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-f.queue:
			f.forward(item.ctx, item.ev)
		}
	}
}

func (f *Forwarder) forward(ctx context.Context, ev Event) {
	channel := string(ev.Channel)
	msg, err := kafka.NewEvent(channel, f.sessionID, Source, ev.Payload)
	if err != nil {
		forwardedTotal.WithLabelValues(channel, "error").Inc()
		f.logger.ErrorContext(ctx, "failed to build forwarded event",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
		return
	}
	msg.OccurredAt = ev.At
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		msg.WithCorrelationID(id)
	}
	if lang := logger.LanguageFromContext(ctx); lang != "" {
		msg.WithMetadata("language", lang)
	}

	if err := f.pub.Publish(ctx, kafka.Topic(channel), msg); err != nil {
		forwardedTotal.WithLabelValues(channel, "error").Inc()
		return
	}
	forwardedTotal.WithLabelValues(channel, "ok").Inc()
}
