package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

func newMockProducer(t *testing.T) (*Producer, *mocks.SyncProducer) {
	t.Helper()
	mockProducer := mocks.NewSyncProducer(t, nil)
	return &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}, mockProducer
}

func TestProducer_Publish(t *testing.T) {
	producer, mockProducer := newMockProducer(t)

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		require.Equal(t, "topic-a", msg.Topic)
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		require.Equal(t, "42", string(key))
		require.Len(t, msg.Headers, 1)
		require.Equal(t, "x-test", string(msg.Headers[0].Key))
		return nil
	})

	err := producer.Publish(context.Background(), "topic-a", "42", map[string]int{"n": 1}, map[string]string{"x-test": "1"})
	require.NoError(t, err)
	require.NoError(t, mockProducer.Close())
}

func TestProducer_Publish_Error(t *testing.T) {
	producer, mockProducer := newMockProducer(t)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.Publish(context.Background(), TopicOrderEvents, "1", struct{}{}, nil)
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, mockProducer.Close())
}

func TestProducer_Publish_CanceledContext(t *testing.T) {
	producer, mockProducer := newMockProducer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, producer.Publish(ctx, TopicOrderEvents, "1", struct{}{}, nil), context.Canceled)
	require.NoError(t, mockProducer.Close())
}

func TestNewProducerConfig_Idempotent(t *testing.T) {
	config := newProducerConfig()

	require.True(t, config.Producer.Idempotent)
	require.Equal(t, sarama.WaitForAll, config.Producer.RequiredAcks)
	require.Equal(t, 1, config.Net.MaxOpenRequests)
	require.NoError(t, config.Validate())
}

func TestEventPublisher_Publish(t *testing.T) {
	producer, mockProducer := newMockProducer(t)
	publisher := NewEventPublisher(producer, "")

	occurredAt := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		require.Equal(t, TopicOrderEvents, msg.Topic)

		raw, err := msg.Value.Encode()
		require.NoError(t, err)
		var decoded OrderEventMessage
		require.NoError(t, json.Unmarshal(raw, &decoded))

		require.Equal(t, "order.status_changed", decoded.EventType)
		require.Equal(t, int64(7), decoded.OrderID)
		require.Equal(t, "completed", decoded.Status)
		require.True(t, occurredAt.Equal(decoded.OccurredAt))
		_, err = uuid.Parse(decoded.EventID)
		require.NoError(t, err)

		headers := map[string]string{}
		for _, h := range msg.Headers {
			headers[string(h.Key)] = string(h.Value)
		}
		require.Equal(t, decoded.EventID, headers[HeaderEventID])
		require.Equal(t, decoded.EventType, headers[HeaderEventType])
		return nil
	})

	err := publisher.Publish(context.Background(), domain.OrderEvent{
		Type:       domain.OrderEventStatusChanged,
		OrderID:    7,
		Client:     "Ana",
		Status:     domain.OrderStatusCompleted,
		OccurredAt: occurredAt,
	})
	require.NoError(t, err)
	require.NoError(t, mockProducer.Close())
}

func TestEventPublisher_KeepsExistingID(t *testing.T) {
	fake := &recordingPublisher{}
	publisher := newEventPublisher(fake, "custom.topic")

	require.NoError(t, publisher.Publish(context.Background(), domain.OrderEvent{
		ID:      "evt-1",
		Type:    domain.OrderEventCreated,
		OrderID: 3,
		Status:  domain.OrderStatusPending,
	}))

	require.Equal(t, "custom.topic", fake.topic)
	require.Equal(t, "3", fake.key)
	require.Equal(t, "evt-1", fake.headers[HeaderEventID])
}

type recordingPublisher struct {
	topic   string
	key     string
	headers map[string]string
}

func (r *recordingPublisher) Publish(_ context.Context, topic, key string, _ any, headers map[string]string) error {
	r.topic, r.key, r.headers = topic, key, headers
	return nil
}
