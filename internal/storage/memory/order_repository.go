package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

// FetchOrdersByStatus возвращает заказы статуса от новых к старым.
func (s *Store) FetchOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.RemoteFailure("fetch orders by status", err)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectLocked(func(o domain.Order) bool { return o.Status == status }), nil
}

// FetchPendingOrdersSince возвращает pending-заказы, созданные не раньше since.
func (s *Store) FetchPendingOrdersSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.RemoteFailure("fetch pending orders since", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectLocked(func(o domain.Order) bool {
		return o.Status == domain.OrderStatusPending && !o.CreatedAt.Before(since)
	}), nil
}

// CreateOrder сохраняет новый pending-заказ.
func (s *Store) CreateOrder(ctx context.Context, draft domain.OrderDraft, createdAt time.Time) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, domain.RemoteFailure("create order", err)
	}
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkProductsLocked(draft.Items); err != nil {
		return domain.Order{}, err
	}

	s.nextOrderID++
	stored := storedOrder{
		order: domain.Order{
			ID:        s.nextOrderID,
			Client:    draft.Client,
			Address:   draft.Address,
			Amount:    draft.Amount,
			Status:    domain.OrderStatusPending,
			CreatedAt: createdAt,
		},
		items: append([]domain.LineItemDraft(nil), draft.Items...),
	}
	s.orders[stored.order.ID] = stored
	return s.resolveLocked(stored), nil
}

// UpdateOrder заменяет клиента, адрес, сумму и позиции заказа. Статус и CreatedAt не меняются.
func (s *Store) UpdateOrder(ctx context.Context, id int64, draft domain.OrderDraft) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, domain.RemoteFailure("update order", err)
	}
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err := s.checkProductsLocked(draft.Items); err != nil {
		return domain.Order{}, err
	}

	stored.order.Client = draft.Client
	stored.order.Address = draft.Address
	stored.order.Amount = draft.Amount
	stored.items = append([]domain.LineItemDraft(nil), draft.Items...)
	s.orders[id] = stored
	return s.resolveLocked(stored), nil
}

// UpdateOrderStatus меняет статус заказа.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if err := ctx.Err(); err != nil {
		return domain.RemoteFailure("update order status", err)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	stored.order.Status = status
	s.orders[id] = stored
	return nil
}

func (s *Store) collectLocked(match func(domain.Order) bool) []domain.Order {
	result := make([]domain.Order, 0, len(s.orders))
	for _, stored := range s.orders {
		if !match(stored.order) {
			continue
		}
		result = append(result, s.resolveLocked(stored))
	}
	domain.SortByCreatedDesc(result)
	return result
}

func (s *Store) resolveLocked(stored storedOrder) domain.Order {
	order := stored.order
	order.Items = make([]domain.LineItem, 0, len(stored.items))
	for _, item := range stored.items {
		order.Items = append(order.Items, domain.LineItem{
			ProductID:   item.ProductID,
			Description: s.products[item.ProductID].Description,
			Quantity:    item.Quantity,
		})
	}
	return order
}

func (s *Store) checkProductsLocked(items []domain.LineItemDraft) error {
	for _, item := range items {
		if _, ok := s.products[item.ProductID]; !ok {
			return fmt.Errorf("%w: id %d", domain.ErrProductNotFound, item.ProductID)
		}
	}
	return nil
}
