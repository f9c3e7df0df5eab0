// Package cache держит клиентскую проекцию заказов, разбитую по статусам.
//
// Партиции заполняются лениво и перечитываются только по force или после
// известной мутации. Одновременные загрузки одной партиции схлопываются в один
// удалённый вызов, а вместе со списком заказов пересчитывается недельная сводка.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/alejoevilches/laabuelachela/internal/aggregation"
	"github.com/alejoevilches/laabuelachela/internal/clock"
	"github.com/alejoevilches/laabuelachela/internal/domain"
	"github.com/alejoevilches/laabuelachela/internal/metrics"
)

const defaultFetchTimeout = 15 * time.Second

// OrderSource — часть удалённого хранилища, которую читает кэш.
type OrderSource interface {
	FetchOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	FetchPendingOrdersSince(ctx context.Context, since time.Time) ([]domain.Order, error)
}

// Options задаёт параметры кэша.
type Options struct {
	Logger       *log.Entry
	Clock        clock.Clock
	Metrics      *metrics.CacheMetrics
	FetchTimeout time.Duration
}

// Option настраивает OrderCache.
type Option func(*Options)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithClock задаёт часы, от которых считается агрегационная неделя.
func WithClock(c clock.Clock) Option {
	return func(opts *Options) {
		opts.Clock = c
	}
}

// WithMetrics подключает Prometheus-метрики.
func WithMetrics(m *metrics.CacheMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithFetchTimeout ограничивает длительность одной загрузки.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.FetchTimeout = timeout
	}
}

// OrderCache — единственный владелец партиций и недельной сводки.
type OrderCache struct {
	source       OrderSource
	logger       *log.Entry
	clock        clock.Clock
	metrics      *metrics.CacheMetrics
	fetchTimeout time.Duration

	group singleflight.Group

	mu         sync.RWMutex
	active     domain.OrderStatus
	partitions map[domain.OrderStatus]*partition
	summary    []domain.WeeklySummaryEntry
}

// New создаёт кэш с пустыми партициями; активна партиция pending.
func New(source OrderSource, options ...Option) *OrderCache {
	opts := Options{FetchTimeout: defaultFetchTimeout}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "order-cache")
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem(nil)
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}

	partitions := make(map[domain.OrderStatus]*partition, 2)
	for _, status := range domain.Statuses() {
		partitions[status] = &partition{state: StateEmpty}
	}

	return &OrderCache{
		source:       source,
		logger:       logger,
		clock:        opts.Clock,
		metrics:      opts.Metrics,
		fetchTimeout: opts.FetchTimeout,
		active:       domain.OrderStatusPending,
		partitions:   partitions,
		summary:      []domain.WeeklySummaryEntry{},
	}
}

// Active возвращает статус активной партиции.
func (c *OrderCache) Active() domain.OrderStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// SelectPartition делает партицию активной и загружает её, если она не в состоянии Loaded.
func (c *OrderCache) SelectPartition(ctx context.Context, status domain.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	c.mu.Lock()
	c.active = status
	loaded := c.partitions[status].state == StateLoaded
	c.mu.Unlock()

	if loaded {
		return nil
	}
	return c.Fetch(ctx, status, false)
}

// FetchOrders загружает активную партицию.
func (c *OrderCache) FetchOrders(ctx context.Context, force bool) error {
	return c.Fetch(ctx, c.Active(), force)
}

// Fetch загружает партицию status. Загруженная партиция без force не трогает
// хранилище. Вызов во время идущей загрузки ждёт её результат вместо нового
// запроса. Сама загрузка не отменяется вместе с ctx: ctx ограничивает только ожидание.
//
// Если загрузка, которую дождался вызов с force, закончилась в Stale (мутация
// пришла, пока она шла), Fetch один раз перечитывает партицию заново.
// Транспорты работают через Fetch с явным статусом; активная партиция
// (SelectPartition, FetchOrders) нужна клиентам с одним видом списка.
func (c *OrderCache) Fetch(ctx context.Context, status domain.OrderStatus, force bool) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	c.mu.RLock()
	state := c.partitions[status].state
	c.mu.RUnlock()

	if state == StateLoaded && !force {
		c.metrics.RecordHit(string(status))
		return nil
	}

	if err := c.wait(ctx, status, state == StateLoading); err != nil || !force {
		return err
	}

	c.mu.RLock()
	state = c.partitions[status].state
	c.mu.RUnlock()
	if state != StateStale {
		return nil
	}
	c.logger.WithField("partition", status).Debug("partition changed during load, reloading")
	return c.wait(ctx, status, false)
}

func (c *OrderCache) wait(ctx context.Context, status domain.OrderStatus, coalesced bool) error {
	ch := c.group.DoChan(string(status), func() (interface{}, error) {
		return nil, c.load(ctx, status)
	})
	if coalesced {
		c.metrics.RecordCoalesced(string(status))
	}

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *OrderCache) load(parent context.Context, status domain.OrderStatus) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.fetchTimeout)
	defer cancel()

	c.mu.Lock()
	p := c.partitions[status]
	p.state = StateLoading
	p.invalidated = false
	c.mu.Unlock()

	logger := c.logger.WithField("partition", status)
	started := time.Now()
	now := c.clock.Now()

	var orders, weekOrders []domain.Order
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = c.source.FetchOrdersByStatus(gctx, status)
		return err
	})
	g.Go(func() error {
		var err error
		weekOrders, err = c.source.FetchPendingOrdersSince(gctx, aggregation.WeekStart(now))
		return err
	})

	if err := g.Wait(); err != nil {
		c.mu.Lock()
		p.state = StateFailed
		p.err = err
		p.invalidated = false
		c.mu.Unlock()

		c.metrics.RecordFetch(string(status), metrics.FetchResultError, time.Since(started))
		logger.WithError(err).Warn("failed to load orders partition, keeping previous data")
		return err
	}

	summary := aggregation.WeeklySummary(weekOrders, now)

	c.mu.Lock()
	p.orders = orders
	p.err = nil
	p.loadedAt = now
	p.generation++
	if p.invalidated {
		p.state = StateStale
	} else {
		p.state = StateLoaded
	}
	p.invalidated = false
	c.summary = summary
	state := p.state
	c.mu.Unlock()

	c.metrics.RecordFetch(string(status), metrics.FetchResultSuccess, time.Since(started))
	c.metrics.SetPartitionSize(string(status), len(orders))
	c.metrics.SetSummarySize(len(summary))
	logger.WithFields(log.Fields{
		"orders":   len(orders),
		"products": len(summary),
		"state":    state.String(),
	}).Debug("orders partition loaded")

	return nil
}

// ApplyStatusChange локально переносит заказ в партицию нового статуса и помечает
// обе партиции устаревшими. После него вызывающий обязан сделать FetchOrders(force=true).
// Возвращает false, если заказа нет ни в одной партиции.
func (c *OrderCache) ApplyStatusChange(orderID int64, newStatus domain.OrderStatus) bool {
	if !newStatus.Valid() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.partitions[newStatus]
	moved := false
	for status, p := range c.partitions {
		if status == newStatus {
			continue
		}
		idx := indexOf(p.orders, orderID)
		if idx < 0 {
			continue
		}
		order := p.orders[idx]
		order.Status = newStatus
		p.orders = removeAt(p.orders, idx)
		p.generation++
		target.orders = prepend(target.orders, order)
		target.generation++
		moved = true
		break
	}

	for _, p := range c.partitions {
		p.markStale()
	}
	c.observeSizesLocked()
	return moved
}

// AddOrder добавляет заказ в начало pending-партиции, не меняя её состояние.
// В незагруженной партиции заказ виден только до первой настоящей загрузки.
// Правка во время загрузки помечает её результат устаревшим.
func (c *OrderCache) AddOrder(order domain.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.partitions[domain.OrderStatusPending]
	p.orders = prepend(p.orders, order.Clone())
	p.generation++
	p.touchDuringLoad()
	c.observeSizesLocked()
}

// ReplaceOrder заменяет заказ в pending-партиции по ID.
func (c *OrderCache) ReplaceOrder(order domain.Order) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.partitions[domain.OrderStatusPending]
	p.touchDuringLoad()
	idx := indexOf(p.orders, order.ID)
	if idx < 0 {
		return false
	}
	p.orders[idx] = order.Clone()
	p.generation++
	return true
}

// RemoveOrder удаляет заказ из pending-партиции.
func (c *OrderCache) RemoveOrder(orderID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.partitions[domain.OrderStatusPending]
	p.touchDuringLoad()
	idx := indexOf(p.orders, orderID)
	if idx < 0 {
		return false
	}
	p.orders = removeAt(p.orders, idx)
	p.generation++
	c.observeSizesLocked()
	return true
}

// Invalidate помечает партицию устаревшей: следующий Fetch без force её перечитает.
func (c *OrderCache) Invalidate(status domain.OrderStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.partitions[status]; ok {
		p.markStale()
	}
}

// Partition возвращает копию партиции.
func (c *OrderCache) Partition(status domain.OrderStatus) PartitionView {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.partitions[status]
	if !ok {
		return PartitionView{Status: status}
	}
	return p.view(status)
}

// Lookup ищет заказ во всех партициях.
func (c *OrderCache) Lookup(orderID int64) (domain.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.partitions {
		if idx := indexOf(p.orders, orderID); idx >= 0 {
			return p.orders[idx].Clone(), true
		}
	}
	return domain.Order{}, false
}

// Orders возвращает заказы активной партиции.
func (c *OrderCache) Orders() []domain.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneOrders(c.partitions[c.active].orders)
}

// WeeklySummary возвращает последнюю успешно посчитанную недельную сводку.
func (c *OrderCache) WeeklySummary() []domain.WeeklySummaryEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneSummary(c.summary)
}

// Snapshot возвращает согласованный срез обеих партиций и сводки.
func (c *OrderCache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		Active:        c.active,
		Pending:       c.partitions[domain.OrderStatusPending].view(domain.OrderStatusPending),
		Completed:     c.partitions[domain.OrderStatusCompleted].view(domain.OrderStatusCompleted),
		WeeklySummary: cloneSummary(c.summary),
	}
}

func (c *OrderCache) observeSizesLocked() {
	for status, p := range c.partitions {
		c.metrics.SetPartitionSize(string(status), len(p.orders))
	}
}

func indexOf(orders []domain.Order, id int64) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}

func removeAt(orders []domain.Order, idx int) []domain.Order {
	out := make([]domain.Order, 0, len(orders)-1)
	out = append(out, orders[:idx]...)
	return append(out, orders[idx+1:]...)
}

func prepend(orders []domain.Order, order domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(orders)+1)
	out = append(out, order)
	return append(out, orders...)
}
