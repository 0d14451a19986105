package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnvelopeVersion is the schema version stamped on every event.
const EnvelopeVersion = 1

// Event is the envelope a forwarded storefront event travels in. Channel is
// the bus channel name (cartUpdated, languageChanged, ...) and SessionID the
// storefront session that raised it; it is also the partition key.
type Event struct {
	ID            string            `json:"event_id"`
	Channel       string            `json:"channel"`
	SessionID     string            `json:"session_id"`
	Version       int               `json:"version"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEvent wraps data in a fresh envelope. A nil payload is encoded as JSON
// null so consumers can tell "refetch" signals apart from empty objects.
func NewEvent(channel, sessionID, source string, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", channel, err)
	}
	return &Event{
		ID:         uuid.NewString(),
		Channel:    channel,
		SessionID:  sessionID,
		Version:    EnvelopeVersion,
		OccurredAt: time.Now().UTC(),
		Source:     source,
		Data:       raw,
	}, nil
}

// WithCorrelationID sets the correlation id of the request that raised the
// event.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// WithMetadata adds a metadata entry.
func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string, 1)
	}
	e.Metadata[key] = value
	return e
}

// Marshal encodes the envelope.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses an envelope and rejects ones without an id or channel.
func DecodeEvent(b []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if e.ID == "" || e.Channel == "" {
		return nil, fmt.Errorf("decode event: missing event_id or channel")
	}
	return &e, nil
}

// DecodeData decodes the payload into target.
func (e *Event) DecodeData(target any) error {
	if err := json.Unmarshal(e.Data, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Channel, err)
	}
	return nil
}
