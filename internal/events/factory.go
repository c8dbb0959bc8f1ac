package events

import (
	"fmt"
	"strings"

	"github.com/airopshq/airops/internal/config"
)

// Publisher backends
const (
	TypeNATS   = "nats"
	TypeRedis  = "redis"
	TypeKafka  = "kafka"
	TypeMemory = "memory"
	TypeNone   = "none"
)

// NewPublisher creates a Publisher based on configuration.
// An empty type or "none" yields a Noop publisher.
func NewPublisher(cfg config.EventsConfig) (Publisher, error) {
	switch strings.ToLower(cfg.Type) {
	case "", TypeNone:
		return Noop{}, nil

	case TypeNATS:
		return newNATSPublisher(NATSConfig{
			URL:           cfg.URL,
			Username:      cfg.Username,
			Password:      cfg.Password,
			SubjectPrefix: cfg.SubjectPrefix,
		})

	case TypeRedis:
		return newRedisPublisher(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
		})

	case TypeKafka:
		return newKafkaPublisher(KafkaConfig{
			Brokers: cfg.KafkaBrokers,
		})

	case TypeMemory:
		return NewMemoryPublisher(), nil

	default:
		return nil, fmt.Errorf("unsupported events type: %s (supported: nats, redis, kafka, memory, none)", cfg.Type)
	}
}
