package postgres

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

// orderRow: одна строка JOIN orders × order_products × products.
// Колонки позиции NULL у заказа без позиций.
type orderRow struct {
	OrderID     int64
	Client      sql.NullString
	Address     sql.NullString
	Amount      decimal.NullDecimal
	Status      string
	CreatedAt   time.Time
	ProductID   sql.NullInt64
	Description sql.NullString
	Quantity    sql.NullInt64
}

// assembleOrders приводит сырые строки к заказам домена, сохраняя порядок первого появления.
// Позиции без описания получают "product #<id>", позиции с количеством <= 0 отбрасываются,
// повторяющиеся продукты одного заказа схлопываются.
func assembleOrders(rows []orderRow, logger *log.Entry) []domain.Order {
	orders := make([]domain.Order, 0)
	orderIndex := make(map[int64]int)
	itemIndex := make(map[int64]map[int64]int)

	for _, row := range rows {
		status, err := domain.ParseOrderStatus(row.Status)
		if err != nil {
			logger.WithFields(log.Fields{
				"order_id": row.OrderID,
				"status":   row.Status,
			}).Warn("skipping order with unknown status")
			continue
		}

		pos, ok := orderIndex[row.OrderID]
		if !ok {
			amount := decimal.Zero
			if row.Amount.Valid {
				amount = row.Amount.Decimal
			}
			pos = len(orders)
			orderIndex[row.OrderID] = pos
			itemIndex[row.OrderID] = make(map[int64]int)
			orders = append(orders, domain.Order{
				ID:        row.OrderID,
				Client:    strings.TrimSpace(row.Client.String),
				Address:   strings.TrimSpace(row.Address.String),
				Amount:    amount,
				Status:    status,
				CreatedAt: row.CreatedAt,
				Items:     []domain.LineItem{},
			})
		}

		if !row.ProductID.Valid {
			continue
		}
		if !row.Quantity.Valid || row.Quantity.Int64 <= 0 || row.Quantity.Int64 > math.MaxInt32 {
			logger.WithFields(log.Fields{
				"order_id":   row.OrderID,
				"product_id": row.ProductID.Int64,
				"quantity":   row.Quantity.Int64,
			}).Warn("dropping line item with out-of-range quantity")
			continue
		}

		order := &orders[pos]
		if at, dup := itemIndex[row.OrderID][row.ProductID.Int64]; dup {
			sum := int64(order.Items[at].Quantity) + row.Quantity.Int64
			if sum > math.MaxInt32 {
				logger.WithFields(log.Fields{
					"order_id":   row.OrderID,
					"product_id": row.ProductID.Int64,
				}).Warn("merged quantity overflows, keeping first row")
				continue
			}
			order.Items[at].Quantity = int32(sum)
			continue
		}

		description := strings.TrimSpace(row.Description.String)
		if description == "" {
			description = fmt.Sprintf("product #%d", row.ProductID.Int64)
		}
		itemIndex[row.OrderID][row.ProductID.Int64] = len(order.Items)
		order.Items = append(order.Items, domain.LineItem{
			ProductID:   row.ProductID.Int64,
			Description: description,
			Quantity:    int32(row.Quantity.Int64),
		})
	}

	return orders
}
