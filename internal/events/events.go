// Package events publishes analytics findings (anomalies, urgent recommendations)
// to a message broker for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Publisher publishes messages to a broker
type Publisher interface {
	// Publish publishes a message to a subject/topic
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishBatch publishes multiple messages and waits for all to complete.
	// Returns the number of successfully published messages and any error
	PublishBatch(ctx context.Context, messages []Message) (int, error)

	// Close closes the connection
	Close() error
}

// Message represents a message for batch publishing
type Message struct {
	Subject string
	Data    []byte
}

// Event types
const (
	TypeAnomaly        = "anomaly"
	TypeRecommendation = "recommendation"
)

// Event is the JSON envelope written to the broker
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	RequestID  string          `json:"request_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// Subject joins the configured prefix and an event type: "<prefix>.<type>"
func Subject(prefix, eventType string) string {
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}

// NewMessage wraps data in an Event envelope addressed to <prefix>.<eventType>
func NewMessage(prefix, eventType, requestID string, data interface{}) (Message, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	envelope, err := json.Marshal(Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		RequestID:  requestID,
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	return Message{Subject: Subject(prefix, eventType), Data: envelope}, nil
}

// Noop discards every message
type Noop struct{}

// Publish discards the message
func (Noop) Publish(context.Context, string, []byte) error { return nil }

// PublishBatch discards the messages and reports them as published
func (Noop) PublishBatch(_ context.Context, messages []Message) (int, error) {
	return len(messages), nil
}

// Close does nothing
func (Noop) Close() error { return nil }
