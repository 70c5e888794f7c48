package checkout

import (
	"net/url"
	"sync"

	"go.uber.org/zap"

	"goflare.io/storefront/models/enum"
)

// Navigator is the navigation collaborator: it moves the view to a path with
// the given query parameters. Clearing the payment indicator means navigating
// to the bare cart path with an empty query.
type Navigator interface {
	Navigate(path string, query url.Values)
}

// Notifier dispatches a user-visible acknowledgment.
type Notifier interface {
	Notify(message string)
}

const (
	successMessage = "Payment successful! Thank you for your purchase."
	cancelMessage  = "Payment was canceled. Please try again."
)

// OutcomeHandler acknowledges the redirect back from the payments provider.
// The acknowledgment is optimistic: the redirect itself is taken as the
// outcome, and the authoritative result arrives separately via payment events.
//
// Per view instance it walks Idle -> AwaitingRedirect -> Acknowledged, then
// collapses back to Idle once the query parameter is cleared.
type OutcomeHandler struct {
	logger *zap.Logger

	mu    sync.Mutex
	state enum.CheckoutState
}

func NewOutcomeHandler(logger *zap.Logger) *OutcomeHandler {
	return &OutcomeHandler{
		logger: logger,
		state:  enum.CheckoutStateIdle,
	}
}

// BeginRedirect records that a session was created and the view handed the
// user off to the provider.
func (h *OutcomeHandler) BeginRedirect() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = enum.CheckoutStateAwaitingRedirect
}

// State reports the current position in the checkout flow.
func (h *OutcomeHandler) State() enum.CheckoutState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// HandleReturn inspects the payment query parameter on view re-entry. A
// recognized value dispatches exactly one acknowledgment and one navigation
// call clearing the query; any other or absent value does nothing. The
// collaborators are passed explicitly rather than held, so the caller decides
// where acknowledgments and navigations land.
func (h *OutcomeHandler) HandleReturn(query url.Values, nav Navigator, notifier Notifier) {
	outcome, ok := enum.ParsePaymentOutcome(query.Get("payment"))
	if !ok {
		return
	}

	h.mu.Lock()
	switch outcome {
	case enum.PaymentOutcomeSuccess:
		h.state = enum.CheckoutStateAcknowledgedSuccess
	case enum.PaymentOutcomeCancel:
		h.state = enum.CheckoutStateAcknowledgedCancel
	}
	h.mu.Unlock()

	h.logger.Info("Payment redirect returned", zap.String("outcome", string(outcome)))

	switch outcome {
	case enum.PaymentOutcomeSuccess:
		notifier.Notify(successMessage)
	case enum.PaymentOutcomeCancel:
		notifier.Notify(cancelMessage)
	}

	nav.Navigate(cartPath, url.Values{})

	h.mu.Lock()
	h.state = enum.CheckoutStateIdle
	h.mu.Unlock()
}
