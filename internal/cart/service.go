package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/voxindia/quickcart-backend/internal/promo"
	apperrors "github.com/voxindia/quickcart-backend/pkg/errors"
	"github.com/voxindia/quickcart-backend/pkg/logger"
	"github.com/voxindia/quickcart-backend/pkg/types"
)

// Service manages per-session carts. Every mutation runs the free-glue
// reconciliation before the snapshot is written back to the slot.
type Service interface {
	Get(ctx context.Context, sessionID string) ([]types.CartItem, error)
	Add(ctx context.Context, sessionID string, item types.CartItem) ([]types.CartItem, error)
	UpdateQuantity(ctx context.Context, sessionID, productID, colorName string, quantity int) ([]types.CartItem, error)
	Remove(ctx context.Context, sessionID, productID, colorName string) ([]types.CartItem, error)
	Replace(ctx context.Context, sessionID string, items []types.CartItem) ([]types.CartItem, error)
	Clear(ctx context.Context, sessionID string) error
}

type service struct {
	slot Slot
	logg *logger.Logger
}

// NewService wires the cart service to its persistence slot.
func NewService(slot Slot, logg *logger.Logger) (Service, error) {
	if slot == nil {
		return nil, errors.New("cart: slot is required")
	}
	if logg == nil {
		return nil, errors.New("cart: logger is required")
	}
	return &service{slot: slot, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) ([]types.CartItem, error) {
	return s.load(ctx, sessionID)
}

func (s *service) Add(ctx context.Context, sessionID string, item types.CartItem) ([]types.CartItem, error) {
	if err := validateNewItem(item); err != nil {
		return nil, err
	}
	items, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range items {
		if items[i].SameLine(item) {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}

	return s.commit(ctx, sessionID, items)
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID, productID, colorName string, quantity int) ([]types.CartItem, error) {
	if quantity <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "quantity must be at least 1")
	}
	items, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := findLine(items, productID, colorName)
	if idx < 0 {
		return nil, apperrors.New(apperrors.CodeNotFound, "cart line not found")
	}
	if items[idx].IsGlue {
		return nil, apperrors.New(apperrors.CodeValidation, "free-gift line cannot be edited")
	}
	items[idx].Quantity = quantity

	return s.commit(ctx, sessionID, items)
}

func (s *service) Remove(ctx context.Context, sessionID, productID, colorName string) ([]types.CartItem, error) {
	items, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := findLine(items, productID, colorName)
	if idx < 0 {
		return nil, apperrors.New(apperrors.CodeNotFound, "cart line not found")
	}
	if items[idx].IsGlue {
		return nil, apperrors.New(apperrors.CodeValidation, "free-gift line cannot be removed")
	}
	items = append(items[:idx], items[idx+1:]...)

	return s.commit(ctx, sessionID, items)
}

func (s *service) Replace(ctx context.Context, sessionID string, items []types.CartItem) ([]types.CartItem, error) {
	kept := make([]types.CartItem, 0, len(items))
	for _, item := range items {
		if item.IsGlue || item.ProductID == promo.FreeGlueSKU {
			continue
		}
		if err := validateNewItem(item); err != nil {
			return nil, err
		}
		kept = append(kept, item)
	}
	return s.commit(ctx, sessionID, kept)
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := s.slot.Clear(ctx, sessionID); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "clearing cart slot")
	}
	return nil
}

// load reads the session snapshot. A missing slot and a corrupted snapshot
// both surface as an empty cart; corruption is logged but never escalated,
// the next write repairs the slot.
func (s *service) load(ctx context.Context, sessionID string) ([]types.CartItem, error) {
	payload, err := s.slot.Load(ctx, sessionID)
	if errors.Is(err, ErrSlotEmpty) {
		return []types.CartItem{}, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "loading cart slot")
	}

	var items []types.CartItem
	if err := json.Unmarshal(payload, &items); err != nil {
		s.logg.Error(ctx, "discarding malformed cart snapshot", err)
		return []types.CartItem{}, nil
	}
	return items, nil
}

func (s *service) commit(ctx context.Context, sessionID string, items []types.CartItem) ([]types.CartItem, error) {
	items, changed := promo.Reconcile(items)
	if changed {
		s.logg.Info(ctx, fmt.Sprintf("free glue reconciled to %d unit(s)", promo.FreeUnitsInCart(items)))
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "encoding cart snapshot")
	}
	if err := s.slot.Save(ctx, sessionID, payload); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "saving cart slot")
	}
	return items, nil
}

func validateNewItem(item types.CartItem) error {
	switch {
	case item.IsGlue || item.ProductID == promo.FreeGlueSKU:
		return apperrors.New(apperrors.CodeValidation, "free-gift line cannot be added directly")
	case item.ProductID == "":
		return apperrors.New(apperrors.CodeValidation, "product_id is required")
	case item.Quantity <= 0:
		return apperrors.New(apperrors.CodeValidation, "quantity must be at least 1")
	case item.Price < 0:
		return apperrors.New(apperrors.CodeValidation, "price cannot be negative")
	case item.Area < 0:
		return apperrors.New(apperrors.CodeValidation, "area cannot be negative")
	}
	return nil
}

func findLine(items []types.CartItem, productID, colorName string) int {
	for i, item := range items {
		if item.ProductID == productID && item.ColorName == colorName {
			return i
		}
	}
	return -1
}
