package logger

import (
	"context"
	"log/slog"

	"github.com/corray333/order-lifecycle/internal/service/models/notification"
)

// NotificationLogger delivers notifications by writing them to the log.
type NotificationLogger struct {
	log *slog.Logger
}

// NewNotificationLogger creates a notifier on top of log. A nil log means slog.Default().
func NewNotificationLogger(log *slog.Logger) *NotificationLogger {
	if log == nil {
		log = slog.Default()
	}

	return &NotificationLogger{
		log: log,
	}
}

// NotifyCustomer writes the message. It never fails.
func (n *NotificationLogger) NotifyCustomer(ctx context.Context, msg notification.Message) error {
	n.log.InfoContext(ctx, "Customer notified",
		"message_id", msg.ID,
		"order_id", msg.OrderID,
		"customer_email", msg.CustomerEmail,
		"kind", msg.Kind,
		"text", msg.Text,
	)

	return nil
}
