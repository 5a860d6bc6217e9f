package inotifier

import (
	"context"

	"github.com/corray333/order-lifecycle/internal/service/models/notification"
)

// INotificationService delivers messages to customers.
type INotificationService interface {
	NotifyCustomer(ctx context.Context, msg notification.Message) error
}
