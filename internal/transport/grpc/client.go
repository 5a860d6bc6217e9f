package grpctransport

import (
	"context"
	"fmt"

	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/corray333/order-lifecycle/internal/service/services/ordersvc"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls orderlifecycle.v1.OrderLifecycle. InvalidArgument and
// NotFound statuses are returned wrapping order.ErrInvalidArgument and
// order.ErrNotFound.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a Client over cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{
		cc: cc,
	}
}

func (c *Client) CreateOrder(ctx context.Context, email string, amount decimal.Decimal) (order.Order, error) {
	req, err := structpb.NewStruct(map[string]any{
		"customerEmail": email,
		"amount":        amount.String(),
	})
	if err != nil {
		return order.Order{}, err
	}

	resp := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, fullMethod("CreateOrder"), req, resp); err != nil {
		return order.Order{}, fromStatus(err)
	}

	return orderFromStruct(resp)
}

func (c *Client) ConfirmOrder(ctx context.Context, orderID uuid.UUID) error {
	return c.invokeWithID(ctx, "ConfirmOrder", orderID, nil)
}

func (c *Client) CancelOrder(ctx context.Context, orderID uuid.UUID) error {
	return c.invokeWithID(ctx, "CancelOrder", orderID, nil)
}

func (c *Client) UpdateOrderAmount(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) error {
	return c.invokeWithID(ctx, "UpdateOrderAmount", orderID, map[string]any{"amount": amount.String()})
}

// GetOrder returns nil when the order does not exist.
func (c *Client) GetOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	req, err := structpb.NewStruct(map[string]any{"id": orderID.String()})
	if err != nil {
		return nil, err
	}

	resp := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, fullMethod("GetOrder"), req, resp); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}

		return nil, fromStatus(err)
	}

	o, err := orderFromStruct(resp)
	if err != nil {
		return nil, err
	}

	return &o, nil
}

func (c *Client) Stats(ctx context.Context) (ordersvc.Stats, error) {
	resp := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, fullMethod("GetStats"), &emptypb.Empty{}, resp); err != nil {
		return ordersvc.Stats{}, fromStatus(err)
	}

	return statsFromStruct(resp), nil
}

func (c *Client) invokeWithID(ctx context.Context, method string, orderID uuid.UUID, extra map[string]any) error {
	fields := map[string]any{"id": orderID.String()}
	for k, v := range extra {
		fields[k] = v
	}

	req, err := structpb.NewStruct(fields)
	if err != nil {
		return err
	}

	if err := c.cc.Invoke(ctx, fullMethod(method), req, &emptypb.Empty{}); err != nil {
		return fromStatus(err)
	}

	return nil
}

func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", order.ErrInvalidArgument, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", order.ErrNotFound, st.Message())
	default:
		return err
	}
}
