package domain

// WeeklySummaryEntry показывает, сколько единиц продукта нужно произвести за текущую неделю.
// Вычисляется из pending-заказов и никогда не сохраняется.
type WeeklySummaryEntry struct {
	ProductID     int64
	Description   string
	TotalQuantity int64
}
