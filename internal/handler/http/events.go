package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/storefront/internal/events"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
)

const (
	streamBuffer      = 64
	heartbeatInterval = 15 * time.Second
)

var (
	streamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_event_stream_clients",
		Help: "Open server-sent event streams.",
	})
	streamDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_event_stream_dropped_total",
		Help: "Events dropped because a stream client fell behind.",
	}, []string{"channel"})
)

// EventsHandler streams bus events to the presentation layer and accepts
// the UI-only channels from it.
type EventsHandler struct {
	bus       *events.Bus
	logger    *slog.Logger
	heartbeat time.Duration
}

// NewEventsHandler creates a new events HTTP handler.
func NewEventsHandler(bus *events.Bus, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{bus: bus, logger: logger, heartbeat: heartbeatInterval}
}

// ViewModeRequest is the payload of viewModeChanged.
type ViewModeRequest struct {
	ViewMode string `json:"viewMode" validate:"required,oneof=grid list"`
}

// Stream handles GET /api/v1/events?channels=<a,b>. Without channels every
// channel is streamed.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	filter, err := parseChannels(r.URL.Query().Get("channels"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	// Subscribe before the preamble so a client that saw it misses nothing.
	queue := make(chan events.Event, streamBuffer)
	unsubscribe := h.bus.SubscribeAll(func(_ context.Context, ev events.Event) {
		if len(filter) > 0 && !filter[ev.Channel] {
			return
		}
		select {
		case queue <- ev:
		default:
			streamDropped.WithLabelValues(string(ev.Channel)).Inc()
		}
	})
	defer unsubscribe()

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, "retry: 3000\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.logger.ErrorContext(r.Context(), "event stream cannot flush", slog.String("error", err.Error()))
		return
	}

	streamClients.Inc()
	defer streamClients.Dec()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case ev := <-queue:
			seq++
			if err := writeEvent(w, seq, ev); err != nil {
				h.logger.DebugContext(r.Context(), "event stream closed", slog.String("error", err.Error()))
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, id uint64, ev events.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Channel, err)
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, ev.Channel, data)
	return err
}

func parseChannels(raw string) (map[events.Channel]bool, error) {
	if raw == "" {
		return nil, nil
	}
	set := make(map[events.Channel]bool)
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ch, ok := events.ParseChannel(name)
		if !ok {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown channel %q", name))
		}
		set[ch] = true
	}
	return set, nil
}

// Publish handles POST /api/v1/events/{channel}. Only the channels that carry
// pure UI state may be published from outside; the others are owned by the
// session stores.
func (h *EventsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ch, ok := events.ParseChannel(chi.URLParam(r, "channel"))
	if !ok {
		httputil.WriteError(w, r, apperrors.NotFound("channel", chi.URLParam(r, "channel")), h.logger)
		return
	}

	switch ch {
	case events.ViewModeChanged:
		var req ViewModeRequest
		if !decodeValid(w, r, &req) {
			return
		}
		h.bus.Publish(r.Context(), ch, events.ViewModeChangedPayload{ViewMode: req.ViewMode})

	case events.ToggleProductFilter:
		var payload json.RawMessage
		if !httputil.DecodeJSON(w, r, &payload) {
			return
		}
		if len(bytes.TrimSpace(payload)) == 0 || bytes.Equal(payload, []byte("null")) {
			h.bus.Publish(r.Context(), ch, nil)
		} else {
			h.bus.Publish(r.Context(), ch, payload)
		}

	default:
		httputil.WriteError(w, r, apperrors.Forbidden(fmt.Sprintf("channel %s is published by the session", ch)), h.logger)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
