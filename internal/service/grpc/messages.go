package grpcsvc

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

// LineItem — позиция заказа на проводе.
type LineItem struct {
	ProductID   int64  `json:"product_id"`
	Description string `json:"description,omitempty"`
	Quantity    int32  `json:"quantity"`
}

// Order — заказ на проводе. Amount передаётся строкой, чтобы не терять точность.
type Order struct {
	ID        int64      `json:"id"`
	Client    string     `json:"client"`
	Address   string     `json:"address,omitempty"`
	Pickup    bool       `json:"pickup"`
	Amount    string     `json:"amount"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	Items     []LineItem `json:"items"`
}

// OrderInput содержит данные заказа для создания и редактирования.
type OrderInput struct {
	Client  string     `json:"client"`
	Address string     `json:"address,omitempty"`
	Amount  string     `json:"amount,omitempty"`
	Items   []LineItem `json:"items"`
}

// Product — продукт каталога на проводе.
type Product struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// SummaryEntry — строка недельной сводки.
type SummaryEntry struct {
	ProductID     int64  `json:"product_id"`
	Description   string `json:"description"`
	TotalQuantity int64  `json:"total_quantity"`
}

type ListOrdersRequest struct {
	Status string `json:"status"`
	Force  bool   `json:"force,omitempty"`
}

type ListOrdersResponse struct {
	Status     string  `json:"status"`
	State      string  `json:"state"`
	Generation uint64  `json:"generation"`
	Orders     []Order `json:"orders"`
}

type CreateOrderRequest struct {
	Order OrderInput `json:"order"`
}

type UpdateOrderRequest struct {
	ID    int64      `json:"id"`
	Order OrderInput `json:"order"`
}

type OrderResponse struct {
	Order Order `json:"order"`
}

type SetOrderStatusRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type SetOrderStatusResponse struct{}

type GetWeeklySummaryRequest struct {
	Force bool `json:"force,omitempty"`
}

type GetWeeklySummaryResponse struct {
	WeekStart time.Time      `json:"week_start"`
	Entries   []SummaryEntry `json:"entries"`
}

type ListProductsRequest struct {
	ActiveOnly bool `json:"active_only,omitempty"`
}

type ListProductsResponse struct {
	Products []Product `json:"products"`
}

type CreateProductRequest struct {
	Description  string `json:"description"`
	WithIntegral bool   `json:"with_integral,omitempty"`
}

type CreateProductResponse struct {
	Products []Product `json:"products"`
}

type ToggleProductRequest struct {
	ID int64 `json:"id"`
}

type ToggleProductResponse struct {
	Product Product `json:"product"`
}

func toDraft(in OrderInput) (domain.OrderDraft, error) {
	amount := decimal.Zero
	if raw := strings.TrimSpace(in.Amount); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.OrderDraft{}, fmt.Errorf("%w: invalid amount %q", domain.ErrValidation, in.Amount)
		}
		amount = parsed
	}

	items := make([]domain.LineItemDraft, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, domain.LineItemDraft{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return domain.OrderDraft{
		Client:  in.Client,
		Address: in.Address,
		Amount:  amount,
		Items:   items,
	}, nil
}

func fromOrder(o domain.Order) Order {
	items := make([]LineItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, LineItem{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
		})
	}
	return Order{
		ID:        o.ID,
		Client:    o.Client,
		Address:   o.Address,
		Pickup:    o.IsPickup(),
		Amount:    o.Amount.StringFixed(2),
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		Items:     items,
	}
}

func fromOrders(orders []domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, fromOrder(o))
	}
	return out
}

func fromProduct(p domain.Product) Product {
	return Product{ID: p.ID, Description: p.Description, Active: p.Active, CreatedAt: p.CreatedAt}
}

func fromProducts(products []domain.Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, fromProduct(p))
	}
	return out
}

func fromSummary(entries []domain.WeeklySummaryEntry) []SummaryEntry {
	out := make([]SummaryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, SummaryEntry{ProductID: e.ProductID, Description: e.Description, TotalQuantity: e.TotalQuantity})
	}
	return out
}
