package domain_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejoevilches/laabuelachela/internal/domain"
)

// helper для создания валидного черновика с двумя позициями.
func makeDraft() domain.OrderDraft {
	return domain.OrderDraft{
		Client:  "Marta",
		Address: "Av. Siempreviva 742",
		Amount:  decimal.RequireFromString("1500.50"),
		Items: []domain.LineItemDraft{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}
}

func TestOrderDraftValidate_Ok(t *testing.T) {
	if err := makeDraft().Validate(); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

func TestOrderDraftValidate_NoItemsAllowed(t *testing.T) {
	draft := makeDraft()
	draft.Items = nil
	if err := draft.Validate(); err != nil {
		t.Fatalf("expected order without items to be valid, got %v", err)
	}
}

func TestOrderDraftValidate_Errors(t *testing.T) {
	draft := makeDraft()
	draft.Client = "   "
	draft.Amount = decimal.NewFromInt(-1)
	draft.Items = []domain.LineItemDraft{{ProductID: 0, Quantity: 0}}

	err := draft.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []error{
		domain.ErrClientRequired,
		domain.ErrAmountNegative,
		domain.ErrProductIDInvalid,
		domain.ErrItemQtyInvalid,
		domain.ErrValidation,
	} {
		if !errors.Is(err, want) {
			t.Errorf("expected %v in %v", want, err)
		}
	}
	if domain.IsRemoteFailure(err) {
		t.Error("validation error must not be classified as remote failure")
	}
}

func TestMergeLineItems(t *testing.T) {
	merged := domain.MergeLineItems([]domain.LineItemDraft{
		{ProductID: 3, Quantity: 1},
		{ProductID: 1, Quantity: 2},
		{ProductID: 3, Quantity: 4},
	})

	if len(merged) != 2 {
		t.Fatalf("expected 2 merged items, got %d", len(merged))
	}
	if merged[0].ProductID != 3 || merged[0].Quantity != 5 {
		t.Fatalf("unexpected first item: %+v", merged[0])
	}
	if merged[1].ProductID != 1 || merged[1].Quantity != 2 {
		t.Fatalf("unexpected second item: %+v", merged[1])
	}
}

func TestMergeLineItems_OverflowKeepsSeparateLines(t *testing.T) {
	merged := domain.MergeLineItems([]domain.LineItemDraft{
		{ProductID: 7, Quantity: math.MaxInt32},
		{ProductID: 7, Quantity: math.MaxInt32},
		{ProductID: 7, Quantity: math.MaxInt32},
	})

	if len(merged) != 3 {
		t.Fatalf("expected overflowing lines to stay separate, got %+v", merged)
	}
	for _, item := range merged {
		if item.Quantity != math.MaxInt32 {
			t.Fatalf("quantity must not wrap, got %d", item.Quantity)
		}
	}
}

func TestOrderDraftValidate_TotalQuantityOverflow(t *testing.T) {
	draft := makeDraft()
	draft.Items = []domain.LineItemDraft{
		{ProductID: 7, Quantity: math.MaxInt32},
		{ProductID: 7, Quantity: math.MaxInt32},
		{ProductID: 7, Quantity: math.MaxInt32},
	}

	for name, candidate := range map[string]domain.OrderDraft{"raw": draft, "normalized": draft.Normalize()} {
		err := candidate.Validate()
		if !errors.Is(err, domain.ErrItemQtyTooLarge) {
			t.Fatalf("%s: expected ErrItemQtyTooLarge, got %v", name, err)
		}
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: overflow must be a validation error, got %v", name, err)
		}
	}

	draft.Items = []domain.LineItemDraft{
		{ProductID: 7, Quantity: math.MaxInt32 - 1},
		{ProductID: 7, Quantity: 1},
	}
	if err := draft.Normalize().Validate(); err != nil {
		t.Fatalf("sum equal to MaxInt32 must be valid, got %v", err)
	}
}

func TestOrderDraftNormalize(t *testing.T) {
	draft := domain.OrderDraft{
		Client:  "  Juan ",
		Address: "  ",
		Items:   []domain.LineItemDraft{{ProductID: 1, Quantity: 1}, {ProductID: 1, Quantity: 1}},
	}

	normalized := draft.Normalize()
	if normalized.Client != "Juan" {
		t.Fatalf("expected trimmed client, got %q", normalized.Client)
	}
	if normalized.Address != "" {
		t.Fatalf("expected empty address, got %q", normalized.Address)
	}
	if len(normalized.Items) != 1 || normalized.Items[0].Quantity != 2 {
		t.Fatalf("expected merged items, got %+v", normalized.Items)
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := domain.ParseOrderStatus(" Completed ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", status)
	}

	if _, err := domain.ParseOrderStatus("cancelled"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestOrderIsPickupAndClone(t *testing.T) {
	order := domain.Order{
		ID:    1,
		Items: []domain.LineItem{{ProductID: 1, Description: "Pan", Quantity: 1}},
	}
	if !order.IsPickup() {
		t.Fatal("order without address must be pickup")
	}

	clone := order.Clone()
	clone.Items[0].Quantity = 9
	if order.Items[0].Quantity != 1 {
		t.Fatal("clone must not share line items")
	}
}

func TestSortByCreatedDesc(t *testing.T) {
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		{ID: 1, CreatedAt: base},
		{ID: 2, CreatedAt: base.Add(time.Hour)},
		{ID: 3, CreatedAt: base},
	}

	domain.SortByCreatedDesc(orders)

	got := []int64{orders[0].ID, orders[1].ID, orders[2].ID}
	want := []int64{2, 3, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: got %v want %v", got, want)
		}
	}
}
