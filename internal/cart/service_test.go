package cart

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/voxindia/quickcart-backend/internal/promo"
	apperrors "github.com/voxindia/quickcart-backend/pkg/errors"
	"github.com/voxindia/quickcart-backend/pkg/logger"
	"github.com/voxindia/quickcart-backend/pkg/types"
)

func newTestService(t *testing.T) (Service, *MemorySlot) {
	t.Helper()
	slot := NewMemorySlot()
	logg := logger.New(logger.Options{ServiceName: "cart-test", Level: zerolog.Disabled, Output: io.Discard})
	svc, err := NewService(slot, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, slot
}

func panel(id string, price int, area float64, qty int) types.CartItem {
	return types.CartItem{ProductID: id, ProductName: "Panel " + id, ColorName: "Teak", Price: price, Quantity: qty, Area: area}
}

func TestAddMergesMatchingLine(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "s1", panel("p1", 1200, 10, 1)); err != nil {
		t.Fatalf("first add: %v", err)
	}
	items, err := svc.Add(ctx, "s1", panel("p1", 1200, 10, 2))
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected merged single line, got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", items[0].Quantity)
	}
}

func TestAddDistinctColorKeepsSeparateLines(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "s1", panel("p1", 1200, 10, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	walnut := panel("p1", 1200, 10, 1)
	walnut.ColorName = "Walnut"
	items, err := svc.Add(ctx, "s1", walnut)
	if err != nil {
		t.Fatalf("add walnut: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected two lines, got %d", len(items))
	}
}

func TestAddRejectsGlueLine(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	_, err := svc.Add(context.Background(), "s1", types.CartItem{ProductID: promo.FreeGlueSKU, Quantity: 1})
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMutationsReconcileGlue(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	items, err := svc.Add(ctx, "s1", panel("p1", 1500, 40, 1))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if promo.FreeUnitsInCart(items) != 1 {
		t.Fatalf("expected one free unit after add, cart=%v", items)
	}

	items, err = svc.UpdateQuantity(ctx, "s1", "p1", "Teak", 2)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if promo.FreeUnitsInCart(items) != 2 {
		t.Fatalf("expected two free units after raise, cart=%v", items)
	}

	items, err = svc.Remove(ctx, "s1", "p1", "Teak")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart after removing last paid line, got %v", items)
	}
}

func TestGlueLineNotCustomerEditable(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "s1", panel("p1", 1500, 40, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := svc.UpdateQuantity(ctx, "s1", promo.FreeGlueSKU, "Default", 5); apperrors.As(err) == nil {
		t.Fatalf("expected error editing glue quantity, got %v", err)
	}
	if _, err := svc.Remove(ctx, "s1", promo.FreeGlueSKU, "Default"); apperrors.As(err) == nil {
		t.Fatalf("expected error removing glue line, got %v", err)
	}
}

func TestUpdateQuantityValidation(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.UpdateQuantity(ctx, "s1", "p1", "Teak", 0); apperrors.As(err) == nil {
		t.Fatal("expected validation error for zero quantity")
	}

	_, err := svc.UpdateQuantity(ctx, "s1", "ghost", "", 2)
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestLoadMalformedSnapshotFallsBackToEmpty(t *testing.T) {
	t.Parallel()
	svc, slot := newTestService(t)
	ctx := context.Background()

	if err := slot.Save(ctx, "s1", []byte("{not json")); err != nil {
		t.Fatalf("seed slot: %v", err)
	}

	items, err := svc.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %v", items)
	}

	// The next mutation repairs the slot.
	if _, err := svc.Add(ctx, "s1", panel("p1", 900, 5, 1)); err != nil {
		t.Fatalf("add after malformed snapshot: %v", err)
	}
	items, err = svc.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != "p1" {
		t.Fatalf("expected repaired cart with p1, got %v", items)
	}
}

func TestReplaceDropsClientSuppliedGlue(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	items, err := svc.Replace(context.Background(), "s1", []types.CartItem{
		panel("p1", 1500, 40, 1),
		{ProductID: promo.FreeGlueSKU, IsGlue: true, Quantity: 9},
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if promo.FreeUnitsInCart(items) != 1 {
		t.Fatalf("expected reconciled single free unit, got %v", items)
	}
}

func TestClearEmptiesSlot(t *testing.T) {
	t.Parallel()
	svc, slot := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "s1", panel("p1", 900, 5, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Clear(ctx, "s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := slot.Load(ctx, "s1"); err != ErrSlotEmpty {
		t.Fatalf("expected empty slot, got %v", err)
	}
}

func TestSessionsIsolated(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "alpha", panel("p1", 900, 5, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	items, err := svc.Get(ctx, "beta")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("session beta should be empty, got %v", items)
	}
}
