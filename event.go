package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
)

// paymentEventSubject carries payment-provider webhook events relayed over NATS.
const paymentEventSubject = "payment.storefront.event.>"

type EventHandler func(context.Context, *stripe.Event) error

type EventManager struct {
	natsConn *nats.Conn
	handlers map[stripe.EventType]EventHandler
	logger   *zap.Logger
}

func NewEventManager(natsConn *nats.Conn, logger *zap.Logger) *EventManager {
	return &EventManager{
		natsConn: natsConn,
		handlers: make(map[stripe.EventType]EventHandler),
		logger:   logger,
	}
}

func (em *EventManager) RegisterHandler(eventType stripe.EventType, handler EventHandler) {
	em.handlers[eventType] = handler
}

func (em *EventManager) GetHandler(eventType stripe.EventType) (EventHandler, bool) {
	handler, exists := em.handlers[eventType]
	return handler, exists
}

func (em *EventManager) SubscribeToEvents(wp *WorkerPool) error {
	_, err := em.natsConn.Subscribe(paymentEventSubject, func(msg *nats.Msg) {
		var evt stripe.Event
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			em.logger.Error("Failed to unmarshal payment event", zap.Error(err))
			return
		}

		wp.Submit(context.Background(), &evt)
	})

	return err
}

// The optimistic redirect acknowledgment on the cart view is not proof of
// payment; these handlers record the provider-confirmed outcome per checkout
// attempt, keyed by client reference.
func (s *service) registerEventHandlers() {
	eventHandlers := map[stripe.EventType]EventHandler{
		stripe.EventTypeCheckoutSessionCompleted:          s.handleCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionExpired:            s.handleCheckoutSessionExpired,
		stripe.EventTypeCheckoutSessionAsyncPaymentFailed: s.handleCheckoutSessionAsyncPaymentFailed,
	}

	for eventType, handler := range eventHandlers {
		s.eventManager.RegisterHandler(eventType, handler)
	}
}

func (s *service) handleCheckoutSessionCompleted(_ context.Context, evt *stripe.Event) error {
	s.logger.Info("Handling checkout session completed event", zap.String("event_id", evt.ID))

	var session stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
		s.logger.Error("Failed to unmarshal checkout session", zap.Error(err))
		return err
	}

	if session.ClientReferenceID == "" {
		s.logger.Warn("Checkout session completed without a client reference", zap.String("session_id", session.ID))
		return nil
	}

	s.recordVerifiedOutcome(session.ClientReferenceID, enum.PaymentOutcomeSuccess)
	s.logger.Info("Payment confirmed",
		zap.String("session_id", session.ID),
		zap.String("client_reference_id", session.ClientReferenceID))

	return nil
}

func (s *service) handleCheckoutSessionExpired(_ context.Context, evt *stripe.Event) error {
	s.logger.Info("Handling checkout session expired event", zap.String("event_id", evt.ID))

	var session stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
		s.logger.Error("Failed to unmarshal checkout session", zap.Error(err))
		return err
	}

	if session.ClientReferenceID == "" {
		return nil
	}

	s.recordVerifiedOutcome(session.ClientReferenceID, enum.PaymentOutcomeCancel)
	s.logger.Info("Checkout session expired without payment",
		zap.String("session_id", session.ID),
		zap.String("client_reference_id", session.ClientReferenceID))

	return nil
}

func (s *service) handleCheckoutSessionAsyncPaymentFailed(_ context.Context, evt *stripe.Event) error {
	s.logger.Info("Handling checkout session async payment failed event", zap.String("event_id", evt.ID))

	var session stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
		s.logger.Error("Failed to unmarshal checkout session", zap.Error(err))
		return err
	}

	if session.ClientReferenceID == "" {
		return nil
	}

	// The session redirected as a success, but the deferred payment method
	// ultimately failed. The attempt did not produce a payment.
	s.recordVerifiedOutcome(session.ClientReferenceID, enum.PaymentOutcomeCancel)
	s.logger.Warn("Async payment failed after redirect",
		zap.String("session_id", session.ID),
		zap.String("client_reference_id", session.ClientReferenceID))

	return nil
}

func (s *service) ProcessEvent(ctx context.Context, evt *stripe.Event) error {

	if _, err := s.event.GetByID(ctx, evt.ID); err == nil {
		s.logger.Info("Event already processed", zap.String("event_id", evt.ID))
		return nil
	}

	handler, exists := s.eventManager.GetHandler(evt.Type)
	if !exists {
		return fmt.Errorf("no handler registered for event type: %s", evt.Type)
	}

	if err := s.event.Create(ctx, &models.Event{
		ID:        evt.ID,
		Type:      evt.Type,
		Processed: false,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}); err != nil {
		s.logger.Error("Failed to record payment event", zap.Error(err))
		return err
	}

	if err := handler(ctx, evt); err != nil {
		s.logger.Error("Failed to handle payment event",
			zap.String("event_id", evt.ID),
			zap.String("event_type", string(evt.Type)),
			zap.Error(err),
		)
		return err
	}

	if err := s.event.MarkAsProcessed(ctx, evt.ID); err != nil {
		return err
	}

	s.logger.Info("Payment event processed", zap.String("event_id", evt.ID))

	return nil
}
