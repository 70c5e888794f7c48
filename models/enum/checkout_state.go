package enum

// CheckoutState tracks one view's checkout flow: idle until the session
// redirect is issued, then acknowledged once the redirect returns, collapsing
// back to idle when the query parameter is cleared.
type CheckoutState string

const (
	CheckoutStateIdle                CheckoutState = "idle"
	CheckoutStateAwaitingRedirect    CheckoutState = "awaiting_redirect"
	CheckoutStateAcknowledgedSuccess CheckoutState = "acknowledged_success"
	CheckoutStateAcknowledgedCancel  CheckoutState = "acknowledged_cancel"
)
