package subscriber

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/airopshq/airops/internal/logging"
)

// RedisConfig represents Redis Streams subscriber configuration
type RedisConfig struct {
	URL      string // redis://host:port/db or a bare address
	Password string
	DB       int
}

// RedisSubscriber implements Subscriber for Redis Streams. Stream names equal
// event subjects, as written by the Redis publisher.
type RedisSubscriber struct {
	client        *redis.Client
	consumerGroup string
	consumerID    string
	subscriptions map[string]context.CancelFunc
	log           *logging.Logger
	mu            sync.Mutex
}

// NewRedisSubscriber creates a new Redis Streams subscriber
func NewRedisSubscriber(cfg RedisConfig, subCfg Config) (*RedisSubscriber, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSubscriber{
		client:        client,
		consumerGroup: subCfg.ConsumerGroup,
		consumerID:    subCfg.ConsumerID,
		subscriptions: make(map[string]context.CancelFunc),
		log:           subCfg.logger("subscriber.redis"),
	}, nil
}

// Subscribe joins the consumer group of the subject's stream and consumes it
// in a goroutine until ctx is cancelled or the subject is unsubscribed.
func (s *RedisSubscriber) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to stream: %s", subject)
	}

	err := s.client.XGroupCreateMkStream(ctx, subject, s.consumerGroup, "0").Err()
	if err != nil && !isBusyGroup(err) {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	s.subscriptions[subject] = cancel

	go s.consume(subCtx, subject, handler)

	s.log.Info("Subscribed to Redis stream", "stream", subject, "group", s.consumerGroup, "consumer", s.consumerID)
	return nil
}

func isBusyGroup(err error) bool {
	return strings.HasPrefix(err.Error(), "BUSYGROUP")
}

// consume reads messages from the stream and processes them
func (s *RedisSubscriber) consume(ctx context.Context, subject string, handler MessageHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.consumerGroup,
			Consumer: s.consumerID,
			Streams:  []string{subject, ">"},
			Count:    100,
			Block:    time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			s.log.Error("Failed to read from stream", "stream", subject, "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				data, ok := message.Values["data"].(string)
				if !ok {
					s.log.Warn("Invalid message format", "stream", subject, "id", message.ID)
					s.client.XAck(ctx, subject, s.consumerGroup, message.ID)
					continue
				}

				if err := handler(ctx, subject, []byte(data)); err != nil {
					// left pending for redelivery
					s.log.Error("Failed to handle message", "stream", subject, "id", message.ID, "error", err)
					continue
				}

				if err := s.client.XAck(ctx, subject, s.consumerGroup, message.ID).Err(); err != nil {
					s.log.Error("Failed to ACK message", "stream", subject, "id", message.ID, "error", err)
				}
			}
		}
	}
}

// Unsubscribe stops consuming a stream
func (s *RedisSubscriber) Unsubscribe(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancel, exists := s.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to stream: %s", subject)
	}

	cancel()
	delete(s.subscriptions, subject)
	return nil
}

// Close closes all subscriptions and the connection
func (s *RedisSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cancel := range s.subscriptions {
		cancel()
	}
	s.subscriptions = make(map[string]context.CancelFunc)

	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}
	return nil
}
