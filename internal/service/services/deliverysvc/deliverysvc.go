package deliverysvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/order-lifecycle/internal/dal/interfaces/ideliveryrepo"
	"github.com/corray333/order-lifecycle/internal/dal/interfaces/inotifier"
	"github.com/corray333/order-lifecycle/internal/service/models/delivery"
	"github.com/corray333/order-lifecycle/internal/service/models/notification"
	"go.opentelemetry.io/otel"
)

// DeliveryService hands consumed notifications to the customer channel and
// records every delivery once.
type DeliveryService struct {
	deliveryRepo ideliveryrepo.IDeliveryRepository
	sender       inotifier.INotificationService
	now          func() time.Time
}

// option is a function that configures the DeliveryService.
type option func(*DeliveryService)

// MustNewDeliveryService creates a new DeliveryService.
func MustNewDeliveryService(opts ...option) *DeliveryService {
	s := &DeliveryService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.deliveryRepo == nil {
		panic("delivery repository is required")
	}
	if s.sender == nil {
		panic("sender is required")
	}

	return s
}

// WithDeliveryRepository sets the delivery log repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithDeliveryRepository(repo ideliveryrepo.IDeliveryRepository) option {
	return func(s *DeliveryService) {
		s.deliveryRepo = repo
	}
}

// WithSender sets the channel notifications are delivered through.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSender(sender inotifier.INotificationService) option {
	return func(s *DeliveryService) {
		s.sender = sender
	}
}

// WithClock overrides the delivery timestamp source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *DeliveryService) {
		s.now = now
	}
}

// Deliver sends msg unless a delivery with the same message id is already recorded.
func (s *DeliveryService) Deliver(ctx context.Context, msg notification.Message) error {
	ctx, span := otel.Tracer("service").Start(ctx, "DeliveryService.Deliver")
	defer span.End()

	delivered, err := s.deliveryRepo.Exists(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("failed to check delivery: %w", err)
	}
	if delivered {
		slog.Info("Notification already delivered, skipping", "message_id", msg.ID, "order_id", msg.OrderID)

		return nil
	}

	if err := s.sender.NotifyCustomer(ctx, msg); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	err = s.deliveryRepo.Save(ctx, delivery.Delivery{
		MessageID:     msg.ID,
		OrderID:       msg.OrderID,
		CustomerEmail: msg.CustomerEmail,
		Kind:          string(msg.Kind),
		Text:          msg.Text,
		DeliveredAt:   s.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to save delivery: %w", err)
	}

	return nil
}
