package ordersvc

import (
	"context"

	"github.com/corray333/order-lifecycle/internal/service/models/notification"
	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type orderRepoMock struct {
	mock.Mock
}

func (m *orderRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)

	return o, args.Error(1)
}

func (m *orderRepoMock) Save(ctx context.Context, o order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *orderRepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *orderRepoMock) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]order.Order)

	return orders, args.Error(1)
}

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) NotifyCustomer(ctx context.Context, msg notification.Message) error {
	return m.Called(ctx, msg).Error(0)
}
