package kafka

import (
	"strconv"
	"time"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

// TopicOrderEvents — топик событий кухни по умолчанию.
const TopicOrderEvents = "kitchen.order.events"

// Kafka headers публикуемых сообщений.
const (
	HeaderEventID   = "x-event-id"
	HeaderEventType = "x-event-type"
)

// OrderEventMessage — JSON-представление domain.OrderEvent на проводе.
type OrderEventMessage struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OrderID    int64     `json:"order_id"`
	Client     string    `json:"client,omitempty"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewOrderEventMessage переводит доменное событие в сообщение.
func NewOrderEventMessage(event domain.OrderEvent) OrderEventMessage {
	return OrderEventMessage{
		EventID:    event.ID,
		EventType:  string(event.Type),
		OrderID:    event.OrderID,
		Client:     event.Client,
		Status:     string(event.Status),
		OccurredAt: event.OccurredAt.UTC(),
	}
}

// Key возвращает ключ партиционирования: все события заказа попадают в одну партицию.
func (m OrderEventMessage) Key() string {
	return strconv.FormatInt(m.OrderID, 10)
}
