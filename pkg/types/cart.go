package types

import "github.com/voxindia/quickcart-backend/pkg/enums"

// CartItem is one line in a session cart. A product may appear once per
// distinct (product_id, color_name, mode) combination; glue lines are
// system-generated and never customer-addressable.
type CartItem struct {
	ProductID   string         `json:"product_id"`
	ProductName string         `json:"product_name,omitempty"`
	Image       string         `json:"image,omitempty"`
	ColorName   string         `json:"color_name,omitempty"`
	Mode        enums.ItemMode `json:"mode,omitempty"`
	Price       int            `json:"price"`
	Quantity    int            `json:"quantity"`
	Area        float64        `json:"area,omitempty"`
	IsGlue      bool           `json:"is_glue,omitempty"`
}

// SameLine reports whether two items share the composite identity used for
// quantity merging. Absent color names match each other.
func (i CartItem) SameLine(other CartItem) bool {
	return i.ProductID == other.ProductID &&
		i.ColorName == other.ColorName &&
		i.Mode == other.Mode &&
		i.IsGlue == other.IsGlue
}

// Subtotal is unit price times quantity, in whole rupees.
func (i CartItem) Subtotal() int {
	return i.Price * i.Quantity
}

// CartTotal sums line subtotals across the cart.
func CartTotal(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}
