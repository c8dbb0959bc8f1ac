package subscriber

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaSubscriber_NoBrokers(t *testing.T) {
	_, err := NewKafkaSubscriber(nil, testSubConfig())
	assert.Error(t, err)
}

func TestKafkaSubscriber_ReaderConfig(t *testing.T) {
	s, err := NewKafkaSubscriber([]string{"b1:9092", "b2:9092"}, testSubConfig())
	require.NoError(t, err)

	cfg := s.readerConfig("airops.analytics.anomaly")
	assert.Equal(t, "airops.analytics.anomaly", cfg.Topic)
	assert.Equal(t, "test", cfg.GroupID)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Brokers)
	assert.Equal(t, kafka.FirstOffset, cfg.StartOffset)
	assert.NoError(t, cfg.Validate())
}

func TestKafkaSubscriber_UnsubscribeUnknown(t *testing.T) {
	s, err := NewKafkaSubscriber([]string{"localhost:9092"}, testSubConfig())
	require.NoError(t, err)

	assert.Error(t, s.Unsubscribe("never.subscribed"))
	assert.NoError(t, s.Close())
}
