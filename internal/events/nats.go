package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// NATSConfig represents NATS JetStream publisher configuration
type NATSConfig struct {
	URL           string
	Username      string
	Password      string
	SubjectPrefix string // a stream capturing "<prefix>.>" is created if missing
}

// NATSPublisher publishes to NATS JetStream
type NATSPublisher struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	stream string
}

// newNATSPublisher connects to NATS and makes sure the event stream exists
func newNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	var opts []nats.Option
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}
	opts = append(opts, nats.Name("airops-analytics"))

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	p, err := newNATSPublisherWithConn(conn, cfg.SubjectPrefix)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

// newNATSPublisherWithConn creates a publisher on an existing connection (used in tests)
func newNATSPublisherWithConn(conn *nats.Conn, subjectPrefix string) (*NATSPublisher, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &NATSPublisher{conn: conn, js: js}
	if subjectPrefix != "" {
		p.stream = StreamName(subjectPrefix)
		if err := p.ensureStream(subjectPrefix); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ensureStream creates the stream that captures every event subject
func (p *NATSPublisher) ensureStream(subjectPrefix string) error {
	if _, err := p.js.StreamInfo(p.stream); err == nil {
		return nil
	}

	_, err := p.js.AddStream(&nats.StreamConfig{
		Name:     p.stream,
		Subjects: []string{subjectPrefix + ".>"},
		Storage:  nats.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", p.stream, err)
	}
	return nil
}

// Publish publishes a message and waits for the JetStream ack
func (p *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if _, err := p.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// PublishBatch queues every message with PublishAsync and waits for all acks
func (p *NATSPublisher) PublishBatch(ctx context.Context, messages []Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	futures := make([]nats.PubAckFuture, 0, len(messages))
	for _, msg := range messages {
		future, err := p.js.PublishAsync(msg.Subject, msg.Data)
		if err != nil {
			continue
		}
		futures = append(futures, future)
	}

	select {
	case <-p.js.PublishAsyncComplete():
	case <-ctx.Done():
		return 0, fmt.Errorf("timeout waiting for batch publish: %w", ctx.Err())
	}

	successCount := 0
	for _, future := range futures {
		select {
		case <-future.Ok():
			successCount++
		case <-future.Err():
		}
	}

	if successCount == 0 {
		return 0, fmt.Errorf("no messages acknowledged out of %d", len(messages))
	}
	return successCount, nil
}

// Close drains and closes the connection
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// Stream returns the JetStream stream name, empty when no prefix was configured
func (p *NATSPublisher) Stream() string {
	return p.stream
}

// StreamName converts a subject prefix into a valid stream name.
// Stream names may only contain A-Z, a-z, 0-9, dash and underscore.
func StreamName(prefix string) string {
	var b strings.Builder
	b.Grow(len(prefix))
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	return strings.ToUpper(b.String())
}
