package event

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"goflare.io/storefront/driver"
	"goflare.io/storefront/models"
)

var _ Repository = (*repository)(nil)

// Repository records payment events so webhook deliveries are processed at
// most once.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	MarkAsProcessed(ctx context.Context, id string) error
}

type repository struct {
	conn   driver.PostgresPool
	logger *zap.Logger
}

func NewRepository(conn driver.PostgresPool, logger *zap.Logger) Repository {
	return &repository{
		conn:   conn,
		logger: logger,
	}
}

func (r *repository) Create(ctx context.Context, event *models.Event) error {
	_, err := r.conn.Exec(ctx,
		`INSERT INTO payment_events (id, type, processed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		event.ID, string(event.Type), event.Processed, event.CreatedAt, event.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create payment event", zap.String("event_id", event.ID), zap.Error(err))
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	var eventType string
	err := r.conn.QueryRow(ctx,
		`SELECT id, type, processed, created_at, updated_at FROM payment_events WHERE id = $1`,
		id).Scan(&event.ID, &eventType, &event.Processed, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return nil, err
	}
	event.Type = stripe.EventType(eventType)
	return &event, nil
}

func (r *repository) MarkAsProcessed(ctx context.Context, id string) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE payment_events SET processed = TRUE, updated_at = $2 WHERE id = $1`,
		id, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark payment event as processed", zap.String("event_id", id), zap.Error(err))
	}
	return err
}
