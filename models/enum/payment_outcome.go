package enum

// PaymentOutcome is the redirect-back indicator carried in the payment query
// parameter.
type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomeCancel  PaymentOutcome = "cancel"
)

// ParsePaymentOutcome recognizes the two valid query values. Anything else,
// including the empty string, is rejected and must be treated as a no-op.
func ParsePaymentOutcome(v string) (PaymentOutcome, bool) {
	switch PaymentOutcome(v) {
	case PaymentOutcomeSuccess, PaymentOutcomeCancel:
		return PaymentOutcome(v), true
	}
	return "", false
}
