package repository

import (
	"context"
	"fmt"

	"artist-booking/pkg/database"

	"go.uber.org/zap"
)

// WebhookEventRepository records processed processor event ids so
// at-least-once redelivery is a no-op the second time.
type WebhookEventRepository interface {
	// Record inserts the event id and reports whether this call was the
	// first to see it.
	Record(ctx context.Context, eventID, eventType string) (bool, error)
}

type webhookEventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWebhookEventRepository(db database.PgxIface, log *zap.Logger) WebhookEventRepository {
	return &webhookEventRepository{
		db:  db,
		log: log.With(zap.String("repository", "webhook_event")),
	}
}

func (r *webhookEventRepository) Record(ctx context.Context, eventID, eventType string) (bool, error) {
	query := `
		INSERT INTO webhook_events (event_id, event_type, processed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query, eventID, eventType)
	if err != nil {
		r.log.Error("Failed to record webhook event",
			zap.Error(err),
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
		)
		return false, fmt.Errorf("record webhook event %s: %w", eventID, err)
	}

	return result.RowsAffected() > 0, nil
}
