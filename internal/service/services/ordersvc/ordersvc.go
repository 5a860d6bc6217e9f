package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/corray333/order-lifecycle/internal/dal/interfaces/inotifier"
	"github.com/corray333/order-lifecycle/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/order-lifecycle/internal/service/models/notification"
	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// OrderService is a service for managing the order lifecycle.
//
// The repository is the system of record. The service keeps only the
// totalCreated/totalConfirmed counters, which live as long as the instance.
type OrderService struct {
	orderRepo iorderrepo.IOrderRepository
	notifier  inotifier.INotificationService

	locks *orderLocks
	newID func() uuid.UUID
	now   func() time.Time

	totalCreated   atomic.Int64
	totalConfirmed atomic.Int64
}

// Stats is a snapshot of the service counters.
type Stats struct {
	TotalCreated   int64 `json:"totalCreated"`
	TotalConfirmed int64 `json:"totalConfirmed"`
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
// Panics when the repository or the notification service is missing.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		locks: newOrderLocks(),
		newID: uuid.New,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.orderRepo == nil {
		panic("ordersvc: order repository is not set")
	}
	if s.notifier == nil {
		panic("ordersvc: notification service is not set")
	}

	return s
}

// WithOrderRepository sets the order repository for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderRepository(repo iorderrepo.IOrderRepository) option {
	return func(s *OrderService) {
		s.orderRepo = repo
	}
}

// WithNotificationService sets the customer notifier for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithNotificationService(notifier inotifier.INotificationService) option {
	return func(s *OrderService) {
		s.notifier = notifier
	}
}

// WithIDGenerator overrides order id allocation.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithIDGenerator(newID func() uuid.UUID) option {
	return func(s *OrderService) {
		s.newID = newID
	}
}

// WithClock overrides the time source used for timestamps.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *OrderService) {
		s.now = now
	}
}

// CreateOrder creates an unconfirmed order and persists it.
func (s *OrderService) CreateOrder(
	ctx context.Context,
	email string,
	amount decimal.Decimal,
) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if !order.ValidAmount(amount) {
		return order.Order{}, fmt.Errorf("%w: amount must be positive, got %s", order.ErrInvalidArgument, amount)
	}

	now := s.now()
	o := order.Order{
		ID:            s.newID(),
		CustomerEmail: email,
		Amount:        amount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	span.SetAttributes(attribute.String("order.id", o.ID.String()))

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return order.Order{}, fmt.Errorf("failed to save order: %w", err)
	}
	s.totalCreated.Add(1)

	slog.InfoContext(ctx, "Order created", "order_id", o.ID, "amount", o.Amount.String())

	return o, nil
}

// ConfirmOrder confirms the order and notifies the customer.
// Confirming an already confirmed order does nothing.
func (s *OrderService) ConfirmOrder(ctx context.Context, orderID uuid.UUID) error {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.ConfirmOrder",
		trace.WithAttributes(attribute.String("order.id", orderID.String())))
	defer span.End()

	unlock := s.locks.lock(orderID)
	defer unlock()

	o, err := s.mustGet(ctx, orderID)
	if err != nil {
		return err
	}

	if o.IsConfirmed {
		slog.DebugContext(ctx, "Order already confirmed", "order_id", orderID)

		return nil
	}

	o.Confirm()
	o.UpdatedAt = s.now()
	if err := s.orderRepo.Save(ctx, *o); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	s.totalConfirmed.Add(1)

	msg := notification.NewMessage(o.ID, o.CustomerEmail, notification.KindConfirmed, o.UpdatedAt)
	if err := s.notifier.NotifyCustomer(ctx, msg); err != nil {
		return fmt.Errorf("failed to notify customer: %w", err)
	}

	slog.InfoContext(ctx, "Order confirmed", "order_id", orderID)

	return nil
}

// CancelOrder removes the order and notifies the customer.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID) error {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.CancelOrder",
		trace.WithAttributes(attribute.String("order.id", orderID.String())))
	defer span.End()

	unlock := s.locks.lock(orderID)
	defer unlock()

	o, err := s.mustGet(ctx, orderID)
	if err != nil {
		return err
	}

	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if o.IsConfirmed {
		s.totalConfirmed.Add(-1)
	}
	s.totalCreated.Add(-1)

	msg := notification.NewMessage(o.ID, o.CustomerEmail, notification.KindCancelled, s.now())
	if err := s.notifier.NotifyCustomer(ctx, msg); err != nil {
		return fmt.Errorf("failed to notify customer: %w", err)
	}

	slog.InfoContext(ctx, "Order cancelled", "order_id", orderID, "was_confirmed", o.IsConfirmed)

	return nil
}

// UpdateOrderAmount sets a new amount on the order. The customer is not notified.
func (s *OrderService) UpdateOrderAmount(
	ctx context.Context,
	orderID uuid.UUID,
	amount decimal.Decimal,
) error {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.UpdateOrderAmount",
		trace.WithAttributes(attribute.String("order.id", orderID.String())))
	defer span.End()

	if !order.ValidAmount(amount) {
		return fmt.Errorf("%w: amount must be positive, got %s", order.ErrInvalidArgument, amount)
	}

	unlock := s.locks.lock(orderID)
	defer unlock()

	o, err := s.mustGet(ctx, orderID)
	if err != nil {
		return err
	}

	o.Amount = amount
	o.UpdatedAt = s.now()
	if err := s.orderRepo.Save(ctx, *o); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	slog.InfoContext(ctx, "Order amount updated", "order_id", orderID, "amount", amount.String())

	return nil
}

// GetOrder returns the order or nil when it does not exist.
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.GetOrder")
	defer span.End()

	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return o, nil
}

// ListOrders retrieves orders based on filter. Page numbering starts at 1.
func (s *OrderService) ListOrders(
	ctx context.Context,
	model order.QueryOrdersModel,
) ([]order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.ListOrders")
	defer span.End()

	pageSize := model.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := model.Page
	if page <= 0 {
		page = 1
	}
	// No order can live past an offset that does not fit in an int.
	if page-1 > math.MaxInt/pageSize {
		return []order.Order{}, nil
	}

	query := &order.QueryOrdersModel{
		Ids:            model.Ids,
		CustomerEmails: model.CustomerEmails,
		Confirmed:      model.Confirmed,
		Limit:          pageSize,
		Offset:         (page - 1) * pageSize,
	}

	orders, err := s.orderRepo.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	if orders == nil {
		return []order.Order{}, nil
	}

	return orders, nil
}

// TotalCreatedOrders returns the number of live orders created by this instance.
func (s *OrderService) TotalCreatedOrders() int64 {
	return s.totalCreated.Load()
}

// TotalConfirmedOrders returns the number of live confirmed orders seen by this instance.
func (s *OrderService) TotalConfirmedOrders() int64 {
	return s.totalConfirmed.Load()
}

// Stats returns both counters.
func (s *OrderService) Stats() Stats {
	return Stats{
		TotalCreated:   s.TotalCreatedOrders(),
		TotalConfirmed: s.TotalConfirmedOrders(),
	}
}

func (s *OrderService) mustGet(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("%w: %s", order.ErrNotFound, orderID)
	}

	return o, nil
}
