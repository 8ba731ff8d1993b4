package enums

// LinkOrderStatus is the status reported by the payment-link gateway for an
// order; PAID is the only terminal success value.
type LinkOrderStatus string

const (
	LinkOrderStatusActive     LinkOrderStatus = "ACTIVE"
	LinkOrderStatusPaid       LinkOrderStatus = "PAID"
	LinkOrderStatusExpired    LinkOrderStatus = "EXPIRED"
	LinkOrderStatusTerminated LinkOrderStatus = "TERMINATED"
)

// String implements fmt.Stringer.
func (s LinkOrderStatus) String() string {
	return string(s)
}

// Paid reports whether the gateway settled the order.
func (s LinkOrderStatus) Paid() bool {
	return s == LinkOrderStatusPaid
}
