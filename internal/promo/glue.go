package promo

import (
	"math"

	"github.com/voxindia/quickcart-backend/pkg/enums"
	"github.com/voxindia/quickcart-backend/pkg/types"
)

const (
	// GlueThresholdArea is the eligible area (sqft) that earns one free glue unit.
	GlueThresholdArea = 30.0

	// FreeGlueSKU is the reserved identifier of the synthetic free-glue line.
	FreeGlueSKU = "FREE-GLUE-SKU"

	freeGlueName  = "Soudal Fix All High Tack Glue (FREE)"
	freeGlueImage = "/glue-main.png"
)

// TotalEligibleArea sums area × quantity over customer lines. Glue lines and
// lines without a positive area are excluded, which is what keeps the
// reconciliation write from feeding back into its own inputs.
func TotalEligibleArea(items []types.CartItem) float64 {
	total := 0.0
	for _, item := range items {
		if item.IsGlue || item.Area <= 0 {
			continue
		}
		total += item.Area * float64(item.Quantity)
	}
	return total
}

// EntitledFreeUnits is the number of free glue units earned by the cart.
func EntitledFreeUnits(items []types.CartItem) int {
	return int(math.Floor(TotalEligibleArea(items) / GlueThresholdArea))
}

// FreeUnitsInCart returns the quantity on the existing glue line, or zero.
func FreeUnitsInCart(items []types.CartItem) int {
	for _, item := range items {
		if item.ProductID == FreeGlueSKU && item.IsGlue {
			return item.Quantity
		}
	}
	return 0
}

// Reconcile aligns the glue line with the current entitlement and reports
// whether the cart changed. It is idempotent: a second pass over its own
// output is always a no-op.
func Reconcile(items []types.CartItem) ([]types.CartItem, bool) {
	entitled := EntitledFreeUnits(items)
	current := FreeUnitsInCart(items)

	switch {
	case entitled == current:
		return items, false
	case current == 0:
		next := make([]types.CartItem, len(items), len(items)+1)
		copy(next, items)
		return append(next, newGlueLine(entitled)), true
	case entitled == 0:
		next := make([]types.CartItem, 0, len(items)-1)
		for _, item := range items {
			if item.ProductID == FreeGlueSKU && item.IsGlue {
				continue
			}
			next = append(next, item)
		}
		return next, true
	default:
		next := make([]types.CartItem, len(items))
		copy(next, items)
		for i := range next {
			if next[i].ProductID == FreeGlueSKU && next[i].IsGlue {
				next[i].Quantity = entitled
			}
		}
		return next, true
	}
}

func newGlueLine(quantity int) types.CartItem {
	return types.CartItem{
		ProductID:   FreeGlueSKU,
		ProductName: freeGlueName,
		Image:       freeGlueImage,
		ColorName:   "Default",
		Mode:        enums.ItemModePanel,
		Price:       0,
		Quantity:    quantity,
		Area:        0,
		IsGlue:      true,
	}
}
