package events

import (
	"context"
	"net"
	"os"
	"testing"
	"time"
)

func getKafkaBroker() string {
	if broker := os.Getenv("KAFKA_BROKER"); broker != "" {
		return broker
	}
	return "localhost:9092"
}

func isKafkaAvailable() bool {
	conn, err := net.DialTimeout("tcp", getKafkaBroker(), 2*time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func TestNewKafkaPublisher_Defaults(t *testing.T) {
	p, err := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("NewKafkaPublisher: %v", err)
	}
	defer func() { _ = p.Close() }()

	if p.config.BatchSize != 100 || p.config.MaxAttempts != 3 || p.config.RequiredAcks != 1 {
		t.Errorf("defaults not applied: %+v", p.config)
	}
	if p.config.BatchTimeout != 10*time.Millisecond {
		t.Errorf("Expected 10ms batch timeout, got %v", p.config.BatchTimeout)
	}
}

func TestNewKafkaPublisher_NoBrokers(t *testing.T) {
	if _, err := NewKafkaPublisher(KafkaConfig{}); err == nil {
		t.Fatal("Expected error without brokers")
	}
}

func TestKafkaPublisher_WriterReuse(t *testing.T) {
	p, _ := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}})
	defer func() { _ = p.Close() }()

	w1 := p.writer("ops.anomaly")
	w2 := p.writer("ops.anomaly")
	if w1 != w2 {
		t.Error("Expected writer to be reused per topic")
	}
	if p.writer("ops.recommendation") == w1 {
		t.Error("Expected distinct writer per topic")
	}
	if s := p.Stats("unknown"); s.Writes != 0 {
		t.Errorf("unexpected stats for unknown topic: %+v", s)
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	if !isKafkaAvailable() {
		t.Skip("Kafka not available, skipping test")
	}

	p, err := NewKafkaPublisher(KafkaConfig{Brokers: []string{getKafkaBroker()}})
	if err != nil {
		t.Fatalf("NewKafkaPublisher: %v", err)
	}
	defer func() { _ = p.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := p.Publish(ctx, "airops-test.anomaly", []byte("drop")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	n, err := p.PublishBatch(ctx, []Message{
		{Subject: "airops-test.anomaly", Data: []byte("a")},
		{Subject: "airops-test.recommendation", Data: []byte("b")},
	})
	if err != nil || n != 2 {
		t.Errorf("PublishBatch = %d, %v", n, err)
	}
}
