package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа на кухне.
type OrderStatus string

const (
	// OrderStatusPending: заказ принят и ещё не приготовлен.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusCompleted: заказ приготовлен и выдан.
	OrderStatusCompleted OrderStatus = "completed"
)

// Statuses возвращает все поддерживаемые статусы в порядке отображения.
func Statuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusCompleted}
}

// ParseOrderStatus приводит строку к OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case OrderStatusPending:
		return OrderStatusPending, nil
	case OrderStatusCompleted:
		return OrderStatusCompleted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// Valid сообщает, является ли статус известным.
func (s OrderStatus) Valid() bool {
	return s == OrderStatusPending || s == OrderStatusCompleted
}

// LineItem — позиция заказа с уже разрешённым описанием продукта.
type LineItem struct {
	ProductID   int64
	Description string
	// Quantity всегда больше нуля.
	Quantity int32
}

// Order агрегирует заказ и его позиции.
type Order struct {
	ID     int64
	Client string
	// Address пустой для самовывоза.
	Address string
	Amount  decimal.Decimal
	Status  OrderStatus
	// CreatedAt назначается один раз при создании и больше не меняется.
	CreatedAt time.Time
	Items     []LineItem
}

// IsPickup сообщает, что заказ забирают из кухни.
func (o Order) IsPickup() bool {
	return strings.TrimSpace(o.Address) == ""
}

// Clone возвращает копию заказа, не разделяющую срез позиций.
func (o Order) Clone() Order {
	if o.Items != nil {
		items := make([]LineItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}

// LineItemDraft — позиция во входных данных заказа.
type LineItemDraft struct {
	ProductID int64
	Quantity  int32
}

// OrderDraft содержит данные для создания или редактирования заказа.
type OrderDraft struct {
	Client  string
	Address string
	Amount  decimal.Decimal
	Items   []LineItemDraft
}

// Normalize обрезает пробелы и схлопывает повторяющиеся продукты.
func (d OrderDraft) Normalize() OrderDraft {
	d.Client = strings.TrimSpace(d.Client)
	d.Address = strings.TrimSpace(d.Address)
	d.Items = MergeLineItems(d.Items)
	return d
}

// Validate проверяет черновик до обращения к хранилищу.
func (d OrderDraft) Validate() error {
	var errs []error

	if strings.TrimSpace(d.Client) == "" {
		errs = append(errs, ErrClientRequired)
	}
	if d.Amount.IsNegative() {
		errs = append(errs, ErrAmountNegative)
	}
	totals := make(map[int64]int64, len(d.Items))
	tooLarge := false
	for _, item := range d.Items {
		if item.ProductID <= 0 {
			errs = append(errs, ErrProductIDInvalid)
		}
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
			continue
		}
		totals[item.ProductID] += int64(item.Quantity)
		if totals[item.ProductID] > math.MaxInt32 && !tooLarge {
			tooLarge = true
			errs = append(errs, ErrItemQtyTooLarge)
		}
	}

	return joinValidation(errs)
}

// MergeLineItems суммирует количества одинаковых продуктов, сохраняя порядок первого появления.
// Сумма, которая не помещается в int32, не сворачивается: позиция остаётся отдельной,
// и Validate отклоняет черновик с ErrItemQtyTooLarge.
func MergeLineItems(items []LineItemDraft) []LineItemDraft {
	if len(items) == 0 {
		return nil
	}

	index := make(map[int64]int, len(items))
	merged := make([]LineItemDraft, 0, len(items))
	for _, item := range items {
		if pos, ok := index[item.ProductID]; ok {
			if sum := int64(merged[pos].Quantity) + int64(item.Quantity); sum <= math.MaxInt32 {
				merged[pos].Quantity = int32(sum)
				continue
			}
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// SortByCreatedDesc упорядочивает заказы от новых к старым, как их показывает список.
func SortByCreatedDesc(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}
