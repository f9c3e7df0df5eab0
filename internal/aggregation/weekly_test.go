package aggregation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

var (
	// Четверг, 22 октября 2026, середина дня.
	thursday = time.Date(2026, 10, 22, 13, 45, 0, 0, time.UTC)
	// Понедельник той же недели, 00:00:00.
	monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
)

func pendingOrder(id int64, createdAt time.Time, items ...domain.LineItem) domain.Order {
	return domain.Order{
		ID:        id,
		Client:    "client",
		Status:    domain.OrderStatusPending,
		CreatedAt: createdAt,
		Items:     items,
	}
}

func item(productID int64, description string, qty int32) domain.LineItem {
	return domain.LineItem{ProductID: productID, Description: description, Quantity: qty}
}

func TestWeekStart(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{name: "midweek", now: thursday, want: monday},
		{name: "monday itself", now: monday.Add(9 * time.Hour), want: monday},
		{name: "monday midnight", now: monday, want: monday},
		{name: "sunday night", now: time.Date(2026, 10, 25, 23, 59, 59, 0, time.UTC), want: monday},
		{
			name: "keeps location",
			now:  time.Date(2026, 10, 21, 1, 0, 0, 0, loc),
			want: time.Date(2026, 10, 19, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekStart(tt.now)
			require.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			require.Equal(t, time.Monday, got.Weekday())
			require.Equal(t, tt.now.Location(), got.Location())
		})
	}
}

func TestWeeklySummary_Scenario(t *testing.T) {
	orders := []domain.Order{
		pendingOrder(1, monday.Add(10*time.Hour), item(10, "productX", 2), item(20, "productY", 1)),
		pendingOrder(2, thursday.Add(-time.Hour), item(10, "productX", 3)),
	}

	got := WeeklySummary(orders, thursday)

	require.Equal(t, []domain.WeeklySummaryEntry{
		{ProductID: 10, Description: "productX", TotalQuantity: 5},
		{ProductID: 20, Description: "productY", TotalQuantity: 1},
	}, got)
}

func TestWeeklySummary_Boundary(t *testing.T) {
	orders := []domain.Order{
		pendingOrder(1, monday.Add(-time.Nanosecond), item(10, "before", 7)),
		pendingOrder(2, monday, item(20, "exactly at boundary", 1)),
	}

	got := WeeklySummary(orders, thursday)

	require.Len(t, got, 1)
	require.Equal(t, int64(20), got[0].ProductID)
}

func TestWeeklySummary_OnlyPending(t *testing.T) {
	completed := pendingOrder(1, thursday, item(10, "pan", 4))
	completed.Status = domain.OrderStatusCompleted

	got := WeeklySummary([]domain.Order{completed}, thursday)

	require.Empty(t, got)
	require.NotNil(t, got)
}

func TestWeeklySummary_EmptyAndItemlessOrders(t *testing.T) {
	require.Empty(t, WeeklySummary(nil, thursday))
	require.Empty(t, WeeklySummary([]domain.Order{pendingOrder(1, thursday)}, thursday))
}

func TestWeeklySummary_TieBreakByFirstSeen(t *testing.T) {
	orders := []domain.Order{
		pendingOrder(1, thursday, item(30, "zeta", 2), item(10, "alfa", 2)),
		pendingOrder(2, thursday, item(20, "beta", 2), item(40, "big", 9)),
	}

	got := WeeklySummary(orders, thursday)

	ids := make([]int64, 0, len(got))
	for _, e := range got {
		ids = append(ids, e.ProductID)
	}
	require.Equal(t, []int64{40, 30, 10, 20}, ids)
}

func TestWeeklySummary_FirstDescriptionWins(t *testing.T) {
	orders := []domain.Order{
		pendingOrder(1, thursday, item(10, "Pan de campo", 1)),
		pendingOrder(2, thursday, item(10, "renamed later", 1)),
	}

	got := WeeklySummary(orders, thursday)

	require.Len(t, got, 1)
	require.Equal(t, "Pan de campo", got[0].Description)
	require.Equal(t, int64(2), got[0].TotalQuantity)
}

func TestWeeklySummary_IdempotentAndSorted(t *testing.T) {
	orders := make([]domain.Order, 0, 20)
	for i := 0; i < 20; i++ {
		orders = append(orders, pendingOrder(int64(i), monday.Add(time.Duration(i)*time.Hour),
			item(int64(i%5), "p", int32(i%3+1)),
			item(int64(i%7+10), "q", int32(i%4+1)),
		))
	}

	first := WeeklySummary(orders, thursday)
	second := WeeklySummary(orders, thursday)

	require.Equal(t, first, second)
	for i := 0; i+1 < len(first); i++ {
		require.GreaterOrEqual(t, first[i].TotalQuantity, first[i+1].TotalQuantity)
	}

	var total, expected int64
	for _, e := range first {
		total += e.TotalQuantity
	}
	for _, o := range orders {
		for _, it := range o.Items {
			expected += int64(it.Quantity)
		}
	}
	require.Equal(t, expected, total)
}

func TestWeeklySummary_PanicsOnNonPositiveQuantity(t *testing.T) {
	orders := []domain.Order{pendingOrder(1, thursday, item(10, "pan", -1))}

	require.Panics(t, func() {
		WeeklySummary(orders, thursday)
	})
}
