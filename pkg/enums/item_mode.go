package enums

import "fmt"

// ItemMode is the purchasable variant of a product line.
type ItemMode string

const (
	ItemModePanel ItemMode = "panel"
	ItemModeBox   ItemMode = "box"
)

var validItemModes = []ItemMode{
	ItemModePanel,
	ItemModeBox,
}

// String implements fmt.Stringer.
func (m ItemMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known ItemMode.
func (m ItemMode) IsValid() bool {
	for _, candidate := range validItemModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseItemMode converts raw input into an ItemMode.
func ParseItemMode(value string) (ItemMode, error) {
	for _, candidate := range validItemModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item mode %q", value)
}
