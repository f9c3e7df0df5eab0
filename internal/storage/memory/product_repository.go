package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

// FetchProducts возвращает каталог: сначала активные, внутри по описанию.
func (s *Store) FetchProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.RemoteFailure("fetch products", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, len(s.products))
	for _, product := range s.products {
		if activeOnly && !product.Active {
			continue
		}
		result = append(result, product)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Active != result[j].Active {
			return result[i].Active
		}
		if result[i].Description != result[j].Description {
			return result[i].Description < result[j].Description
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// CreateProduct добавляет активный продукт.
func (s *Store) CreateProduct(ctx context.Context, description string) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, domain.RemoteFailure("create product", err)
	}
	if err := domain.ValidateProductDescription(description); err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	description = strings.TrimSpace(description)
	for _, existing := range s.products {
		if existing.Description == description {
			return domain.Product{}, domain.ErrProductExists
		}
	}

	s.nextProductID++
	product := domain.Product{
		ID:          s.nextProductID,
		Description: description,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	s.products[product.ID] = product
	return product, nil
}

// ToggleProductActive инвертирует флаг активности продукта.
func (s *Store) ToggleProductActive(ctx context.Context, id int64) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, domain.RemoteFailure("toggle product", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	product.Active = !product.Active
	s.products[id] = product
	return product, nil
}
