// Package cache stores rendered analytics reports keyed by their request parameters.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/airopshq/airops/internal/config"
)

// Cache is a byte-oriented TTL cache
type Cache interface {
	// Get returns the value and true on a hit; a miss is not an error
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl; ttl <= 0 uses the backend default
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Close releases resources
	Close() error
}

// Key builds a deterministic cache key: namespace + ":" + hex(sha256(json(params))).
// encoding/json writes struct fields in declaration order and map keys sorted,
// so equal parameters always hash to the same key.
func Key(namespace string, params interface{}) (string, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key params: %w", err)
	}
	sum := sha256.Sum256(data)
	return namespace + ":" + hex.EncodeToString(sum[:]), nil
}

// Noop never stores anything
type Noop struct{}

// Get always misses
func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the value
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete does nothing
func (Noop) Delete(context.Context, string) error { return nil }

// Close does nothing
func (Noop) Close() error { return nil }

// New creates a Cache based on configuration
func New(cfg config.CacheConfig) (Cache, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "none":
		return Noop{}, nil
	case "memory":
		return NewMemoryCache(cfg.TTL, cfg.CleanupInterval), nil
	case "redis":
		return newRedisCache(RedisConfig{
			URL:      cfg.URL,
			TTL:      cfg.TTL,
			Compress: cfg.Compress,
		})
	default:
		return nil, fmt.Errorf("unsupported cache type: %s (supported: memory, redis, none)", cfg.Type)
	}
}
