package domain

import (
	"context"
	"time"
)

// OrderStore — удалённое хранилище заказов. Реализации приводят сырые записи
// к строгим типам домена на своей границе.
type OrderStore interface {
	// FetchOrdersByStatus возвращает заказы статуса с разрешёнными описаниями продуктов.
	FetchOrdersByStatus(ctx context.Context, status OrderStatus) ([]Order, error)
	// FetchPendingOrdersSince возвращает pending-заказы, созданные не раньше since.
	FetchPendingOrdersSince(ctx context.Context, since time.Time) ([]Order, error)
	CreateOrder(ctx context.Context, draft OrderDraft, createdAt time.Time) (Order, error)
	UpdateOrder(ctx context.Context, id int64, draft OrderDraft) (Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus) error
}

// ProductStore — каталог продуктов.
type ProductStore interface {
	FetchProducts(ctx context.Context, activeOnly bool) ([]Product, error)
	CreateProduct(ctx context.Context, description string) (Product, error)
	ToggleProductActive(ctx context.Context, id int64) (Product, error)
}

// EventPublisher публикует события о заказах наружу.
type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}
