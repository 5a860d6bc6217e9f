package memoryrepo

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/google/uuid"
)

// OrderRepository keeps orders in process memory.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]order.Order
}

// NewOrderRepository creates an empty in-memory order repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[uuid.UUID]order.Order),
	}
}

// GetByID returns a copy of the stored order, or nil when it is absent.
func (r *OrderRepository) GetByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}

	return &o, nil
}

// Save inserts or replaces the order.
func (r *OrderRepository) Save(_ context.Context, o order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[o.ID] = o

	return nil
}

// Delete removes the order. Deleting an absent order is not an error.
func (r *OrderRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.orders, id)

	return nil
}

// Query retrieves orders based on filter criteria, oldest first.
func (r *OrderRepository) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	r.mu.RLock()
	result := make([]order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if matches(o, filter) {
			result = append(result, o)
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}

		return result[i].ID.String() < result[j].ID.String()
	})

	if filter == nil {
		return result, nil
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []order.Order{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

func matches(o order.Order, filter *order.QueryOrdersModel) bool {
	if filter == nil {
		return true
	}
	if len(filter.Ids) > 0 && !slices.Contains(filter.Ids, o.ID) {
		return false
	}
	if len(filter.CustomerEmails) > 0 && !slices.Contains(filter.CustomerEmails, o.CustomerEmail) {
		return false
	}
	if filter.Confirmed != nil && *filter.Confirmed != o.IsConfirmed {
		return false
	}

	return true
}
