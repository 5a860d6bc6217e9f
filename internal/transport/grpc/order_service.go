package grpctransport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/corray333/order-lifecycle/internal/service/services/ordersvc"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// OrderServer implements OrderLifecycleServer on top of the order service.
type OrderServer struct {
	service service
}

// NewOrderServer creates a new OrderServer.
func NewOrderServer(service service) *OrderServer {
	return &OrderServer{
		service: service,
	}
}

// CreateOrder handles {customerEmail, amount}.
func (s *OrderServer) CreateOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email := req.GetFields()["customerEmail"].GetStringValue()
	amount, err := amountField(req)
	if err != nil {
		return nil, err
	}

	created, err := s.service.CreateOrder(ctx, email, amount)
	if err != nil {
		return nil, toStatus(err)
	}

	return orderToStruct(created)
}

// ConfirmOrder handles {id}.
func (s *OrderServer) ConfirmOrder(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	id, err := idField(req)
	if err != nil {
		return nil, err
	}

	if err := s.service.ConfirmOrder(ctx, id); err != nil {
		return nil, toStatus(err)
	}

	return &emptypb.Empty{}, nil
}

// CancelOrder handles {id}.
func (s *OrderServer) CancelOrder(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	id, err := idField(req)
	if err != nil {
		return nil, err
	}

	if err := s.service.CancelOrder(ctx, id); err != nil {
		return nil, toStatus(err)
	}

	return &emptypb.Empty{}, nil
}

// UpdateOrderAmount handles {id, amount}.
func (s *OrderServer) UpdateOrderAmount(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	id, err := idField(req)
	if err != nil {
		return nil, err
	}
	amount, err := amountField(req)
	if err != nil {
		return nil, err
	}

	if err := s.service.UpdateOrderAmount(ctx, id, amount); err != nil {
		return nil, toStatus(err)
	}

	return &emptypb.Empty{}, nil
}

// GetOrder handles {id}. A missing order is reported as NotFound.
func (s *OrderServer) GetOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := idField(req)
	if err != nil {
		return nil, err
	}

	o, err := s.service.GetOrder(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	if o == nil {
		return nil, status.Errorf(codes.NotFound, "order not found: %s", id)
	}

	return orderToStruct(*o)
}

// GetStats returns {totalCreated, totalConfirmed}.
func (s *OrderServer) GetStats(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	stats := s.service.Stats()

	return structpb.NewStruct(map[string]any{
		"totalCreated":   stats.TotalCreated,
		"totalConfirmed": stats.TotalConfirmed,
	})
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, order.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, order.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		slog.Error("Error handling gRPC request", "error", err)

		return status.Error(codes.Internal, "internal error")
	}
}

func idField(req *structpb.Struct) (uuid.UUID, error) {
	id, err := uuid.Parse(req.GetFields()["id"].GetStringValue())
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid order id: %v", err)
	}

	return id, nil
}

// amountField accepts the amount as a decimal string or a number.
func amountField(req *structpb.Struct) (decimal.Decimal, error) {
	v, ok := req.GetFields()["amount"]
	if !ok {
		return decimal.Decimal{}, status.Error(codes.InvalidArgument, "amount is required")
	}

	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		amount, err := decimal.NewFromString(kind.StringValue)
		if err != nil {
			return decimal.Decimal{}, status.Errorf(codes.InvalidArgument, "invalid amount: %v", err)
		}

		return amount, nil
	case *structpb.Value_NumberValue:
		if math.IsNaN(kind.NumberValue) || math.IsInf(kind.NumberValue, 0) {
			return decimal.Decimal{}, status.Error(codes.InvalidArgument, "amount must be a finite number")
		}

		return decimal.NewFromFloat(kind.NumberValue), nil
	default:
		return decimal.Decimal{}, status.Error(codes.InvalidArgument, "amount must be a string or a number")
	}
}

func orderToStruct(o order.Order) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(map[string]any{
		"id":            o.ID.String(),
		"customerEmail": o.CustomerEmail,
		"amount":        o.Amount.String(),
		"isConfirmed":   o.IsConfirmed,
		"createdAt":     o.CreatedAt.Format(time.RFC3339Nano),
		"updatedAt":     o.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode order: %v", err)
	}

	return s, nil
}

func orderFromStruct(s *structpb.Struct) (order.Order, error) {
	fields := s.GetFields()

	id, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to parse order id: %w", err)
	}
	amount, err := decimal.NewFromString(fields["amount"].GetStringValue())
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to parse amount: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["createdAt"].GetStringValue())
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to parse createdAt: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updatedAt"].GetStringValue())
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to parse updatedAt: %w", err)
	}

	return order.Order{
		ID:            id,
		CustomerEmail: fields["customerEmail"].GetStringValue(),
		Amount:        amount,
		IsConfirmed:   fields["isConfirmed"].GetBoolValue(),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func statsFromStruct(s *structpb.Struct) ordersvc.Stats {
	return ordersvc.Stats{
		TotalCreated:   int64(s.GetFields()["totalCreated"].GetNumberValue()),
		TotalConfirmed: int64(s.GetFields()["totalConfirmed"].GetNumberValue()),
	}
}
