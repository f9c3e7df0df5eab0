package cache

import (
	"time"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

// State — состояние партиции.
type State int

const (
	// StateEmpty: партиция ни разу не загружалась.
	StateEmpty State = iota
	// StateLoading: идёт удалённая загрузка.
	StateLoading
	// StateLoaded: данные свежие, чтение обходится без удалённого вызова.
	StateLoaded
	// StateStale: данные есть, но после известной мутации их нужно перечитать.
	StateStale
	// StateFailed: последняя загрузка упала, прежние данные сохранены.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateStale:
		return "stale"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type partition struct {
	state  State
	orders []domain.Order
	err    error
	// invalidated выставляется мутацией во время загрузки: результат придёт уже устаревшим.
	invalidated bool
	loadedAt    time.Time
	// generation растёт при каждой замене или локальной правке содержимого.
	generation uint64
}

func (p *partition) markStale() {
	switch p.state {
	case StateLoaded:
		p.state = StateStale
	case StateLoading:
		p.invalidated = true
	}
}

// touchDuringLoad отмечает локальную правку: загруженное состояние не меняется,
// а идущая загрузка завершится как Stale.
func (p *partition) touchDuringLoad() {
	if p.state == StateLoading {
		p.invalidated = true
	}
}

func (p *partition) view(status domain.OrderStatus) PartitionView {
	return PartitionView{
		Status:     status,
		State:      p.state,
		Orders:     cloneOrders(p.orders),
		Err:        p.err,
		LoadedAt:   p.loadedAt,
		Generation: p.generation,
	}
}

// PartitionView хранит копию партиции для чтения вне кэша.
type PartitionView struct {
	Status     domain.OrderStatus
	State      State
	Orders     []domain.Order
	Err        error
	LoadedAt   time.Time
	Generation uint64
}

// Loaded сообщает, что данные свежие.
func (v PartitionView) Loaded() bool {
	return v.State == StateLoaded
}

// Loading сообщает, что идёт загрузка.
func (v PartitionView) Loading() bool {
	return v.State == StateLoading
}

// Snapshot — согласованный срез всего кэша.
type Snapshot struct {
	Active        domain.OrderStatus
	Pending       PartitionView
	Completed     PartitionView
	WeeklySummary []domain.WeeklySummaryEntry
}

func cloneOrders(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, len(orders))
	for i, o := range orders {
		out[i] = o.Clone()
	}
	return out
}

func cloneSummary(entries []domain.WeeklySummaryEntry) []domain.WeeklySummaryEntry {
	out := make([]domain.WeeklySummaryEntry, len(entries))
	copy(out, entries)
	return out
}
