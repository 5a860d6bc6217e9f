package ideliveryrepo

import (
	"context"

	"github.com/corray333/order-lifecycle/internal/service/models/delivery"
	"github.com/google/uuid"
)

// IDeliveryRepository is interface for the notification delivery log.
type IDeliveryRepository interface {
	Exists(ctx context.Context, messageID uuid.UUID) (bool, error)
	Save(ctx context.Context, d delivery.Delivery) error
}
