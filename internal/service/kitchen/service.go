// Package kitchen координирует хранилище, кэш заказов и публикацию событий.
// Транспорты (gRPC, HTTP) работают только через Service.
package kitchen

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/alejoevilches/laabuelachela/internal/aggregation"
	"github.com/alejoevilches/laabuelachela/internal/cache"
	"github.com/alejoevilches/laabuelachela/internal/clock"
	"github.com/alejoevilches/laabuelachela/internal/domain"
	"github.com/alejoevilches/laabuelachela/internal/layout"
)

// DefaultCatalog засевается в пустой каталог.
var DefaultCatalog = []string{
	"Pizza Margherita",
	"Pizza Pepperoni",
	"Pizza Hawaiana",
	"Coca Cola 1L",
	"Agua Mineral",
}

// Option настраивает Service.
type Option func(*Service)

// WithPublisher подключает публикацию событий о заказах.
func WithPublisher(publisher domain.EventPublisher) Option {
	return func(s *Service) {
		s.events = publisher
	}
}

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock задаёт часы, которыми проставляется CreatedAt новых заказов.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLayoutOptions задаёт геометрию печатного документа.
func WithLayoutOptions(opts layout.Options) Option {
	return func(s *Service) {
		s.layout = opts
	}
}

// Service — прикладной слой кухни.
type Service struct {
	orders   domain.OrderStore
	products domain.ProductStore
	cache    *cache.OrderCache
	events   domain.EventPublisher
	clock    clock.Clock
	layout   layout.Options
	logger   *log.Entry
}

// NewService создаёт сервис поверх хранилищ и кэша.
func NewService(orders domain.OrderStore, products domain.ProductStore, orderCache *cache.OrderCache, options ...Option) *Service {
	s := &Service{
		orders:   orders,
		products: products,
		cache:    orderCache,
		clock:    clock.NewSystem(nil),
		layout:   layout.DefaultOptions(),
		logger:   log.WithField("component", "kitchen-service"),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// WeeklyReport содержит недельную сводку вместе с началом недели.
type WeeklyReport struct {
	WeekStart time.Time
	Entries   []domain.WeeklySummaryEntry
}

// PrintJob содержит документ для печати и поколение партиции, из которой он собран.
type PrintJob struct {
	Status     domain.OrderStatus
	Generation uint64
	Document   layout.Document
}

// ListOrders возвращает партицию status, загружая её при необходимости.
func (s *Service) ListOrders(ctx context.Context, status domain.OrderStatus, force bool) (cache.PartitionView, error) {
	if err := s.cache.Fetch(ctx, status, force); err != nil {
		return cache.PartitionView{}, err
	}
	return s.cache.Partition(status), nil
}

// WeeklySummary возвращает сводку текущей недели. Сводка пересчитывается при загрузке
// pending-партиции, поэтому force перечитывает именно её.
func (s *Service) WeeklySummary(ctx context.Context, force bool) (WeeklyReport, error) {
	if err := s.cache.Fetch(ctx, domain.OrderStatusPending, force); err != nil {
		return WeeklyReport{}, err
	}
	return WeeklyReport{
		WeekStart: aggregation.WeekStart(s.clock.Now()),
		Entries:   s.cache.WeeklySummary(),
	}, nil
}

// PrintOrders раскладывает заказы партиции status на печатные страницы.
func (s *Service) PrintOrders(ctx context.Context, status domain.OrderStatus) (PrintJob, error) {
	view, err := s.ListOrders(ctx, status, false)
	if err != nil {
		return PrintJob{}, err
	}

	doc, err := layout.Layout(view.Orders, s.layout)
	if err != nil {
		return PrintJob{}, err
	}
	return PrintJob{Status: status, Generation: view.Generation, Document: doc}, nil
}

// CreateOrder сохраняет заказ, сразу показывает его в pending-партиции и перечитывает её.
func (s *Service) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Order{}, err
	}

	order, err := s.orders.CreateOrder(ctx, draft, s.clock.Now())
	if err != nil {
		return domain.Order{}, err
	}

	s.cache.AddOrder(order)
	s.refresh(ctx, domain.OrderStatusPending)
	s.publish(ctx, domain.OrderEventCreated, order.ID, order.Client, order.Status)

	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"items":    len(order.Items),
	}).Info("order created")
	return order, nil
}

// UpdateOrder редактирует pending-заказ.
func (s *Service) UpdateOrder(ctx context.Context, id int64, draft domain.OrderDraft) (domain.Order, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Order{}, err
	}

	order, err := s.orders.UpdateOrder(ctx, id, draft)
	if err != nil {
		return domain.Order{}, err
	}

	s.cache.ReplaceOrder(order)
	s.refresh(ctx, domain.OrderStatusPending)
	s.publish(ctx, domain.OrderEventUpdated, order.ID, order.Client, order.Status)
	return order, nil
}

// SetOrderStatus меняет статус заказа: удалённо, затем локально, затем принудительно перечитывает
// активную партицию. Вторая партиция остаётся помеченной устаревшей и перечитается при выборе.
func (s *Service) SetOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	if err := s.orders.UpdateOrderStatus(ctx, id, status); err != nil {
		return err
	}

	order, cached := s.cache.Lookup(id)
	if !s.cache.ApplyStatusChange(id, status) {
		s.logger.WithField("order_id", id).Debug("status changed for order not present in cache")
	}
	if err := s.cache.FetchOrders(ctx, true); err != nil {
		s.logger.WithError(err).WithField("order_id", id).Warn("failed to refresh orders after status change")
	}

	client := order.Client
	if !cached {
		client = s.clientOf(ctx, id, status)
	}
	s.publish(ctx, domain.OrderEventStatusChanged, id, client, status)
	return nil
}

// clientOf находит клиента заказа, которого не было в кэше до смены статуса:
// сначала в обновлённом кэше, затем в партиции нового статуса в хранилище.
func (s *Service) clientOf(ctx context.Context, id int64, status domain.OrderStatus) string {
	if order, ok := s.cache.Lookup(id); ok {
		return order.Client
	}

	logger := s.logger.WithField("order_id", id)
	orders, err := s.orders.FetchOrdersByStatus(ctx, status)
	if err != nil {
		logger = logger.WithError(err)
	}
	for _, order := range orders {
		if order.ID == id {
			return order.Client
		}
	}
	logger.Warn("client unknown for status change event")
	return ""
}

// ListProducts возвращает каталог.
func (s *Service) ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	return s.products.FetchProducts(ctx, activeOnly)
}

// CreateProduct добавляет продукт и, если withIntegral, его вариант "[INTEGRAL] ...".
// Если вариант создать не удалось, возвращается уже созданный основной продукт вместе с ошибкой.
func (s *Service) CreateProduct(ctx context.Context, description string, withIntegral bool) ([]domain.Product, error) {
	product, err := s.products.CreateProduct(ctx, description)
	if err != nil {
		return nil, err
	}
	created := []domain.Product{product}
	if !withIntegral {
		return created, nil
	}

	integral, err := s.products.CreateProduct(ctx, domain.IntegralVariant(product.Description))
	if err != nil {
		s.logger.WithError(err).WithField("product_id", product.ID).Warn("failed to create integral variant")
		return created, fmt.Errorf("create integral variant: %w", err)
	}
	return append(created, integral), nil
}

// ToggleProduct включает или выключает продукт.
func (s *Service) ToggleProduct(ctx context.Context, id int64) (domain.Product, error) {
	return s.products.ToggleProductActive(ctx, id)
}

// EnsureCatalog засевает DefaultCatalog в пустой каталог и возвращает число добавленных продуктов.
func (s *Service) EnsureCatalog(ctx context.Context) (int, error) {
	existing, err := s.products.FetchProducts(ctx, false)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	seeded := 0
	for _, description := range DefaultCatalog {
		if _, err := s.products.CreateProduct(ctx, description); err != nil {
			if errors.Is(err, domain.ErrProductExists) {
				continue
			}
			return seeded, err
		}
		seeded++
	}
	s.logger.WithField("products", seeded).Info("default catalog seeded")
	return seeded, nil
}

func (s *Service) refresh(ctx context.Context, status domain.OrderStatus) {
	if err := s.cache.Fetch(ctx, status, true); err != nil {
		s.logger.WithError(err).WithField("partition", status).Warn("failed to refresh orders partition")
	}
}

func (s *Service) publish(ctx context.Context, eventType domain.OrderEventType, orderID int64, client string, status domain.OrderStatus) {
	if s.events == nil {
		return
	}
	event := domain.OrderEvent{
		Type:       eventType,
		OrderID:    orderID,
		Client:     client,
		Status:     status,
		OccurredAt: s.clock.Now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id":   orderID,
			"event_type": eventType,
		}).Warn("failed to publish order event")
	}
}
