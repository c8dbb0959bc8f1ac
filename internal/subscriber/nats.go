package subscriber

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/airopshq/airops/internal/events"
	"github.com/airopshq/airops/internal/logging"
)

// NATSConfig represents NATS JetStream subscriber configuration
type NATSConfig struct {
	URL           string
	Username      string
	Password      string
	SubjectPrefix string // must match the publisher's prefix to share its stream
}

// NATSSubscriber implements Subscriber for NATS JetStream
type NATSSubscriber struct {
	conn          *nats.Conn
	js            nats.JetStreamContext
	prefix        string
	consumerGroup string
	subscriptions map[string]*nats.Subscription
	log           *logging.Logger
	mu            sync.Mutex
}

// NewNATSSubscriber creates a new NATS subscriber
func NewNATSSubscriber(cfg NATSConfig, subCfg Config) (*NATSSubscriber, error) {
	log := subCfg.logger("subscriber.nats")

	opts := []nats.Option{
		nats.Name(fmt.Sprintf("airops-subscriber-%s", subCfg.ConsumerGroup)),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	s, err := newNATSSubscriberWithConn(conn, cfg.SubjectPrefix, subCfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func newNATSSubscriberWithConn(conn *nats.Conn, prefix string, subCfg Config) (*NATSSubscriber, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSSubscriber{
		conn:          conn,
		js:            js,
		prefix:        prefix,
		consumerGroup: subCfg.ConsumerGroup,
		subscriptions: make(map[string]*nats.Subscription),
		log:           subCfg.logger("subscriber.nats"),
	}, nil
}

// Subscribe subscribes to a subject with the given handler. Failed messages
// are redelivered up to three times.
func (s *NATSSubscriber) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	if err := s.ensureStream(subject); err != nil {
		return err
	}

	durable := durableName(s.consumerGroup, subject)

	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		if ctx.Err() != nil {
			_ = msg.Nak()
			return
		}

		if err := handler(ctx, msg.Subject, msg.Data); err != nil {
			s.log.Error("Failed to handle message",
				"subject", msg.Subject,
				"error", err,
				"data_preview", string(msg.Data[:min(100, len(msg.Data))]))
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxAckPending(100),
		nats.AckWait(30*time.Second),
		nats.MaxDeliver(3),
		nats.DeliverAll(),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	s.subscriptions[subject] = sub
	s.log.Info("Subscribed to subject", "subject", subject, "durable", durable)
	return nil
}

// ensureStream makes sure some stream captures the subject. When the subject
// sits under the configured prefix the stream is the one the publisher uses.
func (s *NATSSubscriber) ensureStream(subject string) error {
	if name, err := s.js.StreamNameBySubject(subject); err == nil && name != "" {
		return nil
	}

	streamCfg := &nats.StreamConfig{
		Name:     events.StreamName(subject),
		Subjects: []string{subject},
		Storage:  nats.FileStorage,
	}
	if s.prefix != "" && strings.HasPrefix(subject, s.prefix+".") {
		streamCfg.Name = events.StreamName(s.prefix)
		streamCfg.Subjects = []string{s.prefix + ".>"}
	}

	if _, err := s.js.AddStream(streamCfg); err != nil && err != nats.ErrStreamNameAlreadyInUse {
		return fmt.Errorf("failed to create stream %s: %w", streamCfg.Name, err)
	}
	return nil
}

// Unsubscribe unsubscribes from a subject
func (s *NATSSubscriber) Unsubscribe(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe from %s: %w", subject, err)
	}

	delete(s.subscriptions, subject)
	s.log.Info("Unsubscribed from subject", "subject", subject)
	return nil
}

// Close closes all subscriptions and the connection
func (s *NATSSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for subject, sub := range s.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			s.log.Warn("Failed to unsubscribe", "subject", subject, "error", err)
		}
	}
	s.subscriptions = make(map[string]*nats.Subscription)

	s.conn.Close()
	return nil
}
