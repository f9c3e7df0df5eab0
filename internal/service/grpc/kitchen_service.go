// Package grpcsvc публикует kitchen.Service как gRPC-сервис kitchen.v1.KitchenService.
package grpcsvc

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/alejoevilches/laabuelachela/internal/domain"
	"github.com/alejoevilches/laabuelachela/internal/service/kitchen"
)

// KitchenService реализует KitchenServiceServer поверх kitchen.Service.
type KitchenService struct {
	svc    *kitchen.Service
	logger *log.Entry
}

// NewKitchenService конструирует gRPC-адаптер.
func NewKitchenService(svc *kitchen.Service, logger *log.Entry) *KitchenService {
	if logger == nil {
		logger = log.WithField("component", "grpc-kitchen-service")
	}
	return &KitchenService{svc: svc, logger: logger}
}

// ListOrders возвращает заказы партиции.
func (s *KitchenService) ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error) {
	orderStatus, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, s.toStatus("ListOrders", err)
	}

	view, err := s.svc.ListOrders(ctx, orderStatus, req.Force)
	if err != nil {
		return nil, s.toStatus("ListOrders", err)
	}
	return &ListOrdersResponse{
		Status:     string(view.Status),
		State:      view.State.String(),
		Generation: view.Generation,
		Orders:     fromOrders(view.Orders),
	}, nil
}

// CreateOrder создаёт pending-заказ.
func (s *KitchenService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error) {
	draft, err := toDraft(req.Order)
	if err != nil {
		return nil, s.toStatus("CreateOrder", err)
	}

	order, err := s.svc.CreateOrder(ctx, draft)
	if err != nil {
		return nil, s.toStatus("CreateOrder", err)
	}
	return &OrderResponse{Order: fromOrder(order)}, nil
}

// UpdateOrder редактирует заказ.
func (s *KitchenService) UpdateOrder(ctx context.Context, req *UpdateOrderRequest) (*OrderResponse, error) {
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	draft, err := toDraft(req.Order)
	if err != nil {
		return nil, s.toStatus("UpdateOrder", err)
	}

	order, err := s.svc.UpdateOrder(ctx, req.ID, draft)
	if err != nil {
		return nil, s.toStatus("UpdateOrder", err)
	}
	return &OrderResponse{Order: fromOrder(order)}, nil
}

// SetOrderStatus переводит заказ в другой статус.
func (s *KitchenService) SetOrderStatus(ctx context.Context, req *SetOrderStatusRequest) (*SetOrderStatusResponse, error) {
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	orderStatus, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, s.toStatus("SetOrderStatus", err)
	}

	if err := s.svc.SetOrderStatus(ctx, req.ID, orderStatus); err != nil {
		return nil, s.toStatus("SetOrderStatus", err)
	}
	return &SetOrderStatusResponse{}, nil
}

// GetWeeklySummary возвращает сводку текущей недели.
func (s *KitchenService) GetWeeklySummary(ctx context.Context, req *GetWeeklySummaryRequest) (*GetWeeklySummaryResponse, error) {
	report, err := s.svc.WeeklySummary(ctx, req.Force)
	if err != nil {
		return nil, s.toStatus("GetWeeklySummary", err)
	}
	return &GetWeeklySummaryResponse{WeekStart: report.WeekStart, Entries: fromSummary(report.Entries)}, nil
}

// ListProducts возвращает каталог.
func (s *KitchenService) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	products, err := s.svc.ListProducts(ctx, req.ActiveOnly)
	if err != nil {
		return nil, s.toStatus("ListProducts", err)
	}
	return &ListProductsResponse{Products: fromProducts(products)}, nil
}

// CreateProduct добавляет продукт и, по запросу, его цельнозерновой вариант.
func (s *KitchenService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*CreateProductResponse, error) {
	products, err := s.svc.CreateProduct(ctx, req.Description, req.WithIntegral)
	if err != nil {
		return nil, s.toStatus("CreateProduct", err)
	}
	return &CreateProductResponse{Products: fromProducts(products)}, nil
}

// ToggleProduct включает или выключает продукт.
func (s *KitchenService) ToggleProduct(ctx context.Context, req *ToggleProductRequest) (*ToggleProductResponse, error) {
	product, err := s.svc.ToggleProduct(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus("ToggleProduct", err)
	}
	return &ToggleProductResponse{Product: fromProduct(product)}, nil
}

func (s *KitchenService) toStatus(method string, err error) error {
	code := codeOf(err)
	entry := s.logger.WithError(err).WithField("method", method)
	if code == codes.Internal || code == codes.Unavailable {
		entry.Error("kitchen call failed")
	} else {
		entry.Debug("kitchen call rejected")
	}
	return status.Error(code, err.Error())
}

func codeOf(err error) codes.Code {
	switch {
	case domain.IsValidation(err):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrProductNotFound):
		return codes.NotFound
	case errors.Is(err, domain.ErrLayoutOverflow):
		return codes.FailedPrecondition
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case domain.IsRemoteFailure(err):
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

var _ KitchenServiceServer = (*KitchenService)(nil)
