package memory

import (
	"sync"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

// Store — in-memory реализация OrderStore и ProductStore для локальной разработки и тестов.
// Повторяет ограничения postgres-схемы: позиция может ссылаться только на существующий продукт.
type Store struct {
	mu sync.RWMutex

	orders   map[int64]storedOrder
	products map[int64]domain.Product

	nextOrderID   int64
	nextProductID int64
}

// storedOrder хранит позиции без описаний: описания разрешаются при чтении, как JOIN в postgres.
type storedOrder struct {
	order domain.Order
	items []domain.LineItemDraft
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		orders:   make(map[int64]storedOrder),
		products: make(map[int64]domain.Product),
	}
}

var (
	_ domain.OrderStore   = (*Store)(nil)
	_ domain.ProductStore = (*Store)(nil)
)
