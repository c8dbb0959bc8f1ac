package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airopshq/airops/internal/config"
	"github.com/airopshq/airops/internal/events"
)

func TestEvents_Decodes(t *testing.T) {
	msg, err := events.NewMessage("airops.test", events.TypeAnomaly, "req-1", map[string]string{"period": "2026-03"})
	require.NoError(t, err)

	var got events.Event
	handler := Events(func(_ context.Context, event events.Event) error {
		got = event
		return nil
	})

	require.NoError(t, handler(context.Background(), msg.Subject, msg.Data))
	assert.Equal(t, events.TypeAnomaly, got.Type)
	assert.Equal(t, "req-1", got.RequestID)

	var data map[string]string
	require.NoError(t, json.Unmarshal(got.Data, &data))
	assert.Equal(t, "2026-03", data["period"])
}

func TestEvents_Rejects(t *testing.T) {
	called := false
	handler := Events(func(context.Context, events.Event) error {
		called = true
		return nil
	})

	assert.Error(t, handler(context.Background(), "s", []byte("not json")))
	assert.Error(t, handler(context.Background(), "s", []byte(`{"id":"x"}`)))
	assert.False(t, called)
}

func TestEvents_PropagatesHandlerError(t *testing.T) {
	boom := errors.New("boom")
	handler := Events(func(context.Context, events.Event) error { return boom })

	msg, err := events.NewMessage("", events.TypeRecommendation, "", struct{}{})
	require.NoError(t, err)
	assert.ErrorIs(t, handler(context.Background(), msg.Subject, msg.Data), boom)
}

func TestDurableName(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"airops.analytics.anomaly", "group-airops_analytics_anomaly"},
		{"airops.*", "group-airops_all"},
		{"airops.>", "group-airops_rest"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, durableName("group", tt.subject))
	}
}

func TestNewSubscriber_Unsupported(t *testing.T) {
	for _, typ := range []string{"", "none", "memory", "rabbitmq"} {
		_, err := NewSubscriber(config.EventsConfig{Type: typ}, DefaultConfig())
		assert.Error(t, err, typ)
	}
}

func TestNewSubscriber_KafkaNeedsBrokers(t *testing.T) {
	_, err := NewSubscriber(config.EventsConfig{Type: "kafka"}, Config{})
	assert.Error(t, err)

	s, err := NewSubscriber(config.EventsConfig{Type: "kafka", KafkaBrokers: []string{"localhost:9092"}}, Config{})
	require.NoError(t, err)
	kafkaSub, ok := s.(*KafkaSubscriber)
	require.True(t, ok)
	assert.Equal(t, DefaultConfig().ConsumerGroup, kafkaSub.consumerGroup)
	assert.NoError(t, s.Close())
}
