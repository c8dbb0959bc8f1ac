// Package subscriber consumes the analytics events written by package events.
// It backs the event_tail tool and any downstream worker that reacts to
// anomalies or urgent recommendations.
package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/airopshq/airops/internal/events"
	"github.com/airopshq/airops/internal/logging"
)

// MessageHandler is a function that processes incoming messages
type MessageHandler func(ctx context.Context, subject string, data []byte) error

// Subscriber defines the interface for message subscription
type Subscriber interface {
	// Subscribe subscribes to a subject/topic with the given handler
	Subscribe(ctx context.Context, subject string, handler MessageHandler) error

	// Unsubscribe unsubscribes from a subject/topic
	Unsubscribe(subject string) error

	// Close closes the subscriber and releases resources
	Close() error
}

// Config holds common subscriber configuration
type Config struct {
	// ConsumerGroup is the durable consumer / group name shared by replicas
	ConsumerGroup string

	// ConsumerID identifies this replica inside the group (Redis only)
	ConsumerID string

	// Logger defaults to the global logger
	Logger *logging.Logger
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		ConsumerGroup: "airops-consumers",
		ConsumerID:    "consumer-1",
	}
}

func (c Config) logger(component string) *logging.Logger {
	logger := c.Logger
	if logger == nil {
		logger = logging.Global()
	}
	return logger.With("component", component)
}

// Events adapts a typed event handler to a MessageHandler. Payloads that are
// not event envelopes are rejected so the broker can redeliver or drop them.
func Events(fn func(ctx context.Context, event events.Event) error) MessageHandler {
	return func(ctx context.Context, subject string, data []byte) error {
		var event events.Event
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("decode event on %s: %w", subject, err)
		}
		if event.Type == "" {
			return fmt.Errorf("event on %s has no type", subject)
		}
		return fn(ctx, event)
	}
}

// durableName builds a consumer name from the group and subject.
// NATS consumer names cannot contain dots or wildcards.
func durableName(group, subject string) string {
	sanitized := strings.ReplaceAll(subject, ".", "_")
	sanitized = strings.ReplaceAll(sanitized, "*", "all")
	sanitized = strings.ReplaceAll(sanitized, ">", "rest")
	return fmt.Sprintf("%s-%s", group, sanitized)
}
