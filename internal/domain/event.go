package domain

import "time"

// OrderEventType определяет тип интеграционного события.
type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order.created"
	OrderEventUpdated       OrderEventType = "order.updated"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
)

// OrderEvent публикуется после успешной мутации заказа.
type OrderEvent struct {
	ID         string
	Type       OrderEventType
	OrderID    int64
	Client     string
	Status     OrderStatus
	OccurredAt time.Time
}
