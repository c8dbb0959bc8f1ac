package events

import "github.com/nats-io/nats.go"

// Test-only helpers while constructors are unexported.

func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	return newNATSPublisher(cfg)
}

func NewNATSPublisherWithConn(conn *nats.Conn, subjectPrefix string) (*NATSPublisher, error) {
	return newNATSPublisherWithConn(conn, subjectPrefix)
}

func NewRedisPublisher(cfg RedisConfig) (*RedisPublisher, error) {
	return newRedisPublisher(cfg)
}

func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	return newKafkaPublisher(cfg)
}
