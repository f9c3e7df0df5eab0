package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

// FetchProducts возвращает каталог: сначала активные, внутри по описанию.
func (s *Store) FetchProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := `SELECT id, description, active, created_at FROM products`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY active DESC, description ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.RemoteFailure("fetch products", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, domain.RemoteFailure("fetch products", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.RemoteFailure("fetch products", fmt.Errorf("iterate product rows: %w", err))
	}
	return products, nil
}

// CreateProduct добавляет активный продукт.
func (s *Store) CreateProduct(ctx context.Context, description string) (domain.Product, error) {
	if err := domain.ValidateProductDescription(description); err != nil {
		return domain.Product{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	product, err := scanProduct(s.db.QueryRowContext(ctx, `
		INSERT INTO products (description, active)
		VALUES ($1, TRUE)
		RETURNING id, description, active, created_at
	`, strings.TrimSpace(description)))
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return domain.Product{}, domain.ErrProductExists
		}
		return domain.Product{}, domain.RemoteFailure("create product", err)
	}
	return product, nil
}

// ToggleProductActive инвертирует флаг активности одним UPDATE.
func (s *Store) ToggleProductActive(ctx context.Context, id int64) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	product, err := scanProduct(s.db.QueryRowContext(ctx, `
		UPDATE products
		SET active = NOT active
		WHERE id = $1
		RETURNING id, description, active, created_at
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, domain.RemoteFailure("toggle product", err)
	}
	return product, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var product domain.Product
	if err := row.Scan(&product.ID, &product.Description, &product.Active, &product.CreatedAt); err != nil {
		return domain.Product{}, fmt.Errorf("scan product: %w", err)
	}
	return product, nil
}
