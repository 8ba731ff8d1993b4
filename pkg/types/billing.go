package types

import "strings"

// BillingDetails carries the eight required checkout form fields.
type BillingDetails struct {
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2" validate:"required"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	Zip          string `json:"zip" validate:"required"`
}

// BlankFields returns the json names of fields that are empty after
// trimming. Checkout refuses to start while any are blank.
func (b BillingDetails) BlankFields() []string {
	fields := []struct {
		name  string
		value string
	}{
		{"full_name", b.FullName},
		{"email", b.Email},
		{"phone", b.Phone},
		{"address_line1", b.AddressLine1},
		{"address_line2", b.AddressLine2},
		{"city", b.City},
		{"state", b.State},
		{"zip", b.Zip},
	}
	var blank []string
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			blank = append(blank, field.name)
		}
	}
	return blank
}

// OrderPayload is the snapshot built once per checkout attempt and handed to
// the payment provider and the mail collaborator. It is never persisted.
type OrderPayload struct {
	Billing     BillingDetails `json:"billing"`
	Items       []CartItem     `json:"items"`
	TotalAmount int            `json:"total_amount"`
	Method      string         `json:"method"`
}
