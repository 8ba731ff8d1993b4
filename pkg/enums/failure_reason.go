package enums

// FailureReason classifies why a checkout attempt failed.
type FailureReason string

const (
	FailureReasonValidation        FailureReason = "validation"
	FailureReasonSignatureMismatch FailureReason = "signature-mismatch"
	FailureReasonProviderError     FailureReason = "provider-error"
	FailureReasonNetwork           FailureReason = "network"
)

// String implements fmt.Stringer.
func (r FailureReason) String() string {
	return string(r)
}
