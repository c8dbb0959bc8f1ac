package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"github.com/redis/go-redis/v9"
)

// Payload header bytes. Entries written with compression disabled stay
// readable after it is enabled, and the other way round.
const (
	headerRaw    byte = 'r'
	headerSnappy byte = 's'
)

// RedisConfig represents Redis cache configuration
type RedisConfig struct {
	URL      string        // Redis URL (e.g., redis://localhost:6379/0)
	Password string        // Optional password when URL is a bare address
	DB       int           // Database number when URL is a bare address
	TTL      time.Duration // Default TTL
	Compress bool          // Snappy-compress payloads
}

// RedisCache stores entries with SET EX
type RedisCache struct {
	client *redis.Client
	config RedisConfig
}

// newRedisCache connects to Redis and verifies the connection
func newRedisCache(cfg RedisConfig) (*RedisCache, error) {
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

	return &RedisCache{client: client, config: cfg}, nil
}

// Get retrieves and decodes a value
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	value, err := decodePayload(data)
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

// Set encodes and stores a value
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.config.TTL
	}

	if err := c.client.Set(ctx, key, encodePayload(value, c.config.Compress), ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a key
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func encodePayload(value []byte, compress bool) []byte {
	if !compress {
		return append([]byte{headerRaw}, value...)
	}
	encoded := snappy.Encode(nil, value)
	return append([]byte{headerSnappy}, encoded...)
}

func decodePayload(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty cache payload")
	}

	switch data[0] {
	case headerRaw:
		return data[1:], nil
	case headerSnappy:
		decoded, err := snappy.Decode(nil, data[1:])
		if err != nil {
			return nil, fmt.Errorf("snappy decompress failed: %w", err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("unknown cache payload header %q", data[0])
	}
}
