package storefront

import (
	"context"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"goflare.io/storefront/appstate"
	"goflare.io/storefront/cart"
	"goflare.io/storefront/checkout"
	"goflare.io/storefront/event"
	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
)

type Service interface {
	// LoadCart fetches the current cart, replaces the session snapshot, and
	// publishes the unit count to the app state.
	LoadCart(ctx context.Context, customerID string) (models.CartSnapshot, error)

	// RemoveCartItem deletes a line item from the session snapshot locally,
	// without a server round trip.
	RemoveCartItem(cartID uint64)

	// CartSnapshot returns the current session snapshot.
	CartSnapshot() models.CartSnapshot

	// BeginCheckout builds a checkout session from the snapshot, creates it
	// against the payments API, and returns the redirect URL.
	BeginCheckout(ctx context.Context, originURL string) (string, error)

	// HandlePaymentReturn dispatches the acknowledgment for a payment redirect
	// and clears the query parameter via the navigator.
	HandlePaymentReturn(query url.Values, nav checkout.Navigator, notifier checkout.Notifier)

	// CheckoutState reports where the view is in the checkout flow.
	CheckoutState() enum.CheckoutState

	// VerifiedOutcome reports the webhook-confirmed outcome for a checkout
	// attempt, keyed by its client reference.
	VerifiedOutcome(clientReference string) (enum.PaymentOutcome, bool)

	// ProcessEvent applies one payment event, exactly once per event ID.
	ProcessEvent(ctx context.Context, evt *stripe.Event) error

	Close()
}

type service struct {
	store    *cart.Store
	sessions checkout.SessionCreator
	outcome  *checkout.OutcomeHandler
	event    event.Repository

	eventManager *EventManager
	workerPool   *WorkerPool

	natsConn *nats.Conn
	logger   *zap.Logger

	mu       sync.Mutex
	verified map[string]enum.PaymentOutcome
}

func NewService(
	cartRepo cart.Repository, eventRepo event.Repository, sessions checkout.SessionCreator,
	appState *appstate.State,
	natsConn *nats.Conn,
	logger *zap.Logger) Service {
	s := &service{
		store:    cart.NewStore(cartRepo, appState, logger),
		sessions: sessions,
		outcome:  checkout.NewOutcomeHandler(logger),
		event:    eventRepo,
		natsConn: natsConn,
		logger:   logger,
		verified: make(map[string]enum.PaymentOutcome),
	}
	s.eventManager = NewEventManager(natsConn, logger)
	s.workerPool = NewWorkerPool(10, s, logger)
	s.registerEventHandlers()

	if natsConn != nil {
		if err := s.eventManager.SubscribeToEvents(s.workerPool); err != nil {
			logger.Error("Failed to subscribe to payment events", zap.Error(err))
		}
	}

	return s
}

func (s *service) LoadCart(ctx context.Context, customerID string) (models.CartSnapshot, error) {
	return s.store.Load(ctx, customerID)
}

func (s *service) RemoveCartItem(cartID uint64) {
	s.store.RemoveItem(cartID)
}

func (s *service) CartSnapshot() models.CartSnapshot {
	return s.store.Snapshot()
}

func (s *service) BeginCheckout(ctx context.Context, originURL string) (string, error) {
	snapshot := s.store.Snapshot()
	reference := uuid.NewString()

	req := checkout.Build(snapshot.Items, originURL, reference)

	redirectURL, err := s.sessions.CreateSession(ctx, req)
	if err != nil {
		s.logger.Error("Checkout attempt failed",
			zap.String("client_reference_id", reference),
			zap.Int("line_items", len(req.LineItems)),
			zap.Error(err))
		return "", err
	}

	s.outcome.BeginRedirect()
	s.logger.Info("Checkout session created",
		zap.String("client_reference_id", reference),
		zap.Int("line_items", len(req.LineItems)))

	return redirectURL, nil
}

func (s *service) HandlePaymentReturn(query url.Values, nav checkout.Navigator, notifier checkout.Notifier) {
	s.outcome.HandleReturn(query, nav, notifier)
}

func (s *service) CheckoutState() enum.CheckoutState {
	return s.outcome.State()
}

func (s *service) VerifiedOutcome(clientReference string) (enum.PaymentOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome, ok := s.verified[clientReference]
	return outcome, ok
}

func (s *service) recordVerifiedOutcome(clientReference string, outcome enum.PaymentOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verified[clientReference] = outcome
}

func (s *service) Close() {
	s.workerPool.Shutdown()
}
