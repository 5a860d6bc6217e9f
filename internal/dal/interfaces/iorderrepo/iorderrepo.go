package iorderrepo

import (
	"context"

	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/google/uuid"
)

// IOrderRepository is an interface for the order repository.
//
// GetByID returns (nil, nil) when the order does not exist.
// Save inserts the order or overwrites the stored one with the same id.
type IOrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	Save(ctx context.Context, o order.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}
