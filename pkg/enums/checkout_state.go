package enums

// CheckoutState tracks one checkout attempt through its lifecycle.
type CheckoutState string

const (
	CheckoutStateIdle             CheckoutState = "idle"
	CheckoutStateValidating       CheckoutState = "validating"
	CheckoutStateAwaitingProvider CheckoutState = "awaiting_provider"
	CheckoutStateVerifying        CheckoutState = "verifying"
	CheckoutStateSuccess          CheckoutState = "success"
	CheckoutStateFailed           CheckoutState = "failed"
)

// String implements fmt.Stringer.
func (s CheckoutState) String() string {
	return string(s)
}

// Terminal reports whether the attempt has finished.
func (s CheckoutState) Terminal() bool {
	return s == CheckoutStateSuccess || s == CheckoutStateFailed
}

// InFlight reports whether a provider round-trip is pending; a new submit
// must be refused while true.
func (s CheckoutState) InFlight() bool {
	return s == CheckoutStateAwaitingProvider || s == CheckoutStateVerifying
}
