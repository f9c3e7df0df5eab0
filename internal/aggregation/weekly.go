// Package aggregation считает недельный план производства по pending-заказам.
//
// Функции пакета чистые: они не обращаются к хранилищу и не блокируются.
package aggregation

import (
	"fmt"
	"sort"
	"time"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

// WeekStart возвращает ближайший прошедший понедельник 00:00:00 в зоне now.
// Для понедельника возвращается начало этого же дня.
func WeekStart(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	// time.Sunday == 0, поэтому воскресенье отстоит от понедельника на 6 дней.
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}

// InWeek сообщает, попадает ли заказ в агрегационную неделю, начинающуюся в start.
func InWeek(order domain.Order, start time.Time) bool {
	return order.Status == domain.OrderStatusPending && !order.CreatedAt.Before(start)
}

// WeeklySummary сворачивает pending-заказы текущей недели в итоги по продуктам.
//
// Результат отсортирован по количеству по убыванию; при равенстве сохраняется
// порядок первого появления продукта. Пересчёт всегда полный.
// Количество <= 0 нарушает контракт, функция паникует.
func WeeklySummary(orders []domain.Order, now time.Time) []domain.WeeklySummaryEntry {
	start := WeekStart(now)

	index := make(map[int64]int)
	entries := make([]domain.WeeklySummaryEntry, 0)
	for _, order := range orders {
		if !InWeek(order, start) {
			continue
		}
		for _, item := range order.Items {
			if item.Quantity <= 0 {
				panic(fmt.Sprintf("aggregation: order %d has non-positive quantity %d for product %d",
					order.ID, item.Quantity, item.ProductID))
			}
			pos, ok := index[item.ProductID]
			if !ok {
				pos = len(entries)
				index[item.ProductID] = pos
				entries = append(entries, domain.WeeklySummaryEntry{
					ProductID:   item.ProductID,
					Description: item.Description,
				})
			}
			entries[pos].TotalQuantity += int64(item.Quantity)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalQuantity > entries[j].TotalQuantity
	})
	return entries
}
