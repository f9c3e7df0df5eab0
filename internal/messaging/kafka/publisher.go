package kafka

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

type messagePublisher interface {
	Publish(ctx context.Context, topic, key string, value any, headers map[string]string) error
}

// EventPublisher реализует domain.EventPublisher поверх Producer.
type EventPublisher struct {
	producer messagePublisher
	topic    string
}

// NewEventPublisher создаёт publisher; пустой topic заменяется на TopicOrderEvents.
func NewEventPublisher(producer *Producer, topic string) *EventPublisher {
	return newEventPublisher(producer, topic)
}

func newEventPublisher(producer messagePublisher, topic string) *EventPublisher {
	if strings.TrimSpace(topic) == "" {
		topic = TopicOrderEvents
	}
	return &EventPublisher{producer: producer, topic: topic}
}

// Publish отправляет событие, назначая ему ID, если его нет.
func (p *EventPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	msg := NewOrderEventMessage(event)

	return p.producer.Publish(ctx, p.topic, msg.Key(), msg, map[string]string{
		HeaderEventID:   msg.EventID,
		HeaderEventType: msg.EventType,
	})
}

var _ domain.EventPublisher = (*EventPublisher)(nil)
