package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultStreamMaxLen caps each stream; trimming is approximate
const defaultStreamMaxLen = 10000

// RedisConfig represents Redis Streams publisher configuration
type RedisConfig struct {
	URL      string // Redis URL (e.g., redis://localhost:6379)
	Password string // Optional password when URL is a bare address
	DB       int    // Database number when URL is a bare address
	MaxLen   int64  // Approximate stream length cap (default: 10000)
}

// RedisPublisher appends events to Redis Streams, one stream per subject
type RedisPublisher struct {
	client *redis.Client
	config RedisConfig
}

// newRedisPublisher connects to Redis and verifies the connection
func newRedisPublisher(cfg RedisConfig) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if cfg.MaxLen <= 0 {
		cfg.MaxLen = defaultStreamMaxLen
	}

	return &RedisPublisher{client: client, config: cfg}, nil
}

func (p *RedisPublisher) xaddArgs(msg Message) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: msg.Subject,
		MaxLen: p.config.MaxLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"data": msg.Data,
		},
	}
}

// Publish appends a message to the subject's stream
func (p *RedisPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := p.client.XAdd(ctx, p.xaddArgs(Message{Subject: subject, Data: data})).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", subject, err)
	}
	return nil
}

// PublishBatch publishes multiple messages using a Redis pipeline
func (p *RedisPublisher) PublishBatch(ctx context.Context, messages []Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	pipe := p.client.Pipeline()
	for _, msg := range messages {
		pipe.XAdd(ctx, p.xaddArgs(msg))
	}

	cmds, err := pipe.Exec(ctx)
	successCount := 0
	for _, cmd := range cmds {
		if cmd.Err() == nil {
			successCount++
		}
	}

	if err != nil && successCount == 0 {
		return 0, fmt.Errorf("failed to execute batch publish: %w", err)
	}
	return successCount, nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
