package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/order-lifecycle/internal/dal/postgres"
	"github.com/corray333/order-lifecycle/internal/service/models/delivery"
	"github.com/google/uuid"
)

// DeliveryRepository writes the notification_log table.
type DeliveryRepository struct {
	pgClient *postgres.Client
}

// NewDeliveryRepository creates a new delivery repository.
func NewDeliveryRepository(pgClient *postgres.Client) *DeliveryRepository {
	return &DeliveryRepository{
		pgClient: pgClient,
	}
}

// Exists reports whether a notification with the given message id was delivered.
func (r *DeliveryRepository) Exists(ctx context.Context, messageID uuid.UUID) (bool, error) {
	query, args, err := sq.Select("1").
		Prefix("SELECT EXISTS (").
		From("notification_log").
		Where(sq.Eq{"message_id": messageID}).
		Suffix(")").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var exists bool
	if err := r.pgClient.Pool().QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check notification log: %w", err)
	}

	return exists, nil
}

// Save records a delivered notification. Saving the same message twice is a no-op.
func (r *DeliveryRepository) Save(ctx context.Context, d delivery.Delivery) error {
	query, args, err := sq.Insert("notification_log").
		Columns(
			"message_id",
			"order_id",
			"customer_email",
			"kind",
			"text",
			"delivered_at",
		).
		Values(
			d.MessageID,
			d.OrderID,
			d.CustomerEmail,
			d.Kind,
			d.Text,
			d.DeliveredAt,
		).
		Suffix("ON CONFLICT (message_id) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build notification log insert query: %w", err)
	}

	if _, err := r.pgClient.Pool().Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert notification log: %w", err)
	}

	return nil
}
