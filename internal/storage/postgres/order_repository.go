package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

const selectOrdersSQL = `
	SELECT o.id, o.client, o.address, o.amount, o.status, o.created_at,
	       op.product_id, p.description, op.quantity
	FROM orders o
	LEFT JOIN order_products op ON op.order_id = o.id
	LEFT JOIN products p ON p.id = op.product_id
`

const orderOrdering = `ORDER BY o.created_at DESC, o.id DESC, op.product_id ASC`

// FetchOrdersByStatus возвращает заказы статуса одним запросом с JOIN по позициям.
func (s *Store) FetchOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	orders, err := s.queryOrders(ctx, s.db, selectOrdersSQL+` WHERE o.status = $1 `+orderOrdering, string(status))
	if err != nil {
		return nil, domain.RemoteFailure("fetch orders by status", err)
	}
	return orders, nil
}

// FetchPendingOrdersSince возвращает pending-заказы, созданные не раньше since.
func (s *Store) FetchPendingOrdersSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	orders, err := s.queryOrders(ctx, s.db,
		selectOrdersSQL+` WHERE o.status = $1 AND o.created_at >= $2 `+orderOrdering,
		string(domain.OrderStatusPending), since,
	)
	if err != nil {
		return nil, domain.RemoteFailure("fetch pending orders since", err)
	}
	return orders, nil
}

// CreateOrder сохраняет заказ и его позиции в одной транзакции.
func (s *Store) CreateOrder(ctx context.Context, draft domain.OrderDraft, createdAt time.Time) (domain.Order, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Order{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, domain.RemoteFailure("create order", fmt.Errorf("begin tx: %w", err))
	}
	defer rollback(tx)

	var id int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (client, address, amount, status, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)
		RETURNING id
	`, draft.Client, draft.Address, draft.Amount, string(domain.OrderStatusPending), createdAt).Scan(&id); err != nil {
		return domain.Order{}, domain.RemoteFailure("create order", fmt.Errorf("insert order: %w", err))
	}

	if err := insertItems(ctx, tx, id, draft.Items); err != nil {
		return domain.Order{}, classifyItemsError("create order", err)
	}

	order, err := s.loadOrderTx(ctx, tx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Order{}, domain.RemoteFailure("create order", fmt.Errorf("commit: %w", err))
	}
	return order, nil
}

// UpdateOrder заменяет клиента, адрес, сумму и позиции. Статус и created_at не трогаются.
func (s *Store) UpdateOrder(ctx context.Context, id int64, draft domain.OrderDraft) (domain.Order, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Order{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, domain.RemoteFailure("update order", fmt.Errorf("begin tx: %w", err))
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET client = $1, address = NULLIF($2, ''), amount = $3
		WHERE id = $4
	`, draft.Client, draft.Address, draft.Amount, id)
	if err != nil {
		return domain.Order{}, domain.RemoteFailure("update order", fmt.Errorf("update order: %w", err))
	}
	if affected, err := res.RowsAffected(); err != nil {
		return domain.Order{}, domain.RemoteFailure("update order", fmt.Errorf("rows affected: %w", err))
	} else if affected == 0 {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_products WHERE order_id = $1`, id); err != nil {
		return domain.Order{}, domain.RemoteFailure("update order", fmt.Errorf("delete items: %w", err))
	}
	if err := insertItems(ctx, tx, id, draft.Items); err != nil {
		return domain.Order{}, classifyItemsError("update order", err)
	}

	order, err := s.loadOrderTx(ctx, tx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Order{}, domain.RemoteFailure("update order", fmt.Errorf("commit: %w", err))
	}
	return order, nil
}

// UpdateOrderStatus меняет статус заказа.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return domain.RemoteFailure("update order status", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.RemoteFailure("update order status", fmt.Errorf("rows affected: %w", err))
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) queryOrders(ctx context.Context, q queryer, query string, args ...any) ([]domain.Order, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	raw := make([]orderRow, 0)
	for rows.Next() {
		var row orderRow
		if err := rows.Scan(
			&row.OrderID, &row.Client, &row.Address, &row.Amount, &row.Status, &row.CreatedAt,
			&row.ProductID, &row.Description, &row.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		raw = append(raw, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return assembleOrders(raw, s.logger), nil
}

func (s *Store) loadOrderTx(ctx context.Context, tx *sql.Tx, id int64) (domain.Order, error) {
	orders, err := s.queryOrders(ctx, tx, selectOrdersSQL+` WHERE o.id = $1 `+orderOrdering, id)
	if err != nil {
		return domain.Order{}, domain.RemoteFailure("load order", err)
	}
	if len(orders) == 0 {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return orders[0], nil
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID int64, items []domain.LineItemDraft) error {
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_products (order_id, product_id, quantity)
			VALUES ($1, $2, $3)
		`, orderID, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("insert item for product %d: %w", item.ProductID, err)
		}
	}
	return nil
}

func classifyItemsError(op string, err error) error {
	if pgErrorCode(err) == pgForeignKeyViolation {
		return fmt.Errorf("%w: %w", domain.ErrProductNotFound, err)
	}
	return domain.RemoteFailure(op, err)
}
