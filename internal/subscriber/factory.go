package subscriber

import (
	"fmt"
	"strings"

	"github.com/airopshq/airops/internal/config"
	"github.com/airopshq/airops/internal/events"
)

// NewSubscriber creates a Subscriber for the broker the publisher writes to
func NewSubscriber(cfg config.EventsConfig, subCfg Config) (Subscriber, error) {
	if subCfg.ConsumerGroup == "" {
		subCfg.ConsumerGroup = DefaultConfig().ConsumerGroup
	}
	if subCfg.ConsumerID == "" {
		subCfg.ConsumerID = DefaultConfig().ConsumerID
	}

	switch strings.ToLower(cfg.Type) {
	case events.TypeNATS:
		return NewNATSSubscriber(NATSConfig{
			URL:           cfg.URL,
			Username:      cfg.Username,
			Password:      cfg.Password,
			SubjectPrefix: cfg.SubjectPrefix,
		}, subCfg)
	case events.TypeRedis:
		return NewRedisSubscriber(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
		}, subCfg)
	case events.TypeKafka:
		return NewKafkaSubscriber(cfg.KafkaBrokers, subCfg)
	default:
		return nil, fmt.Errorf("events type %q cannot be subscribed to (supported: nats, redis, kafka)", cfg.Type)
	}
}
