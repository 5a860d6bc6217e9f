package grpctransport

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "orderlifecycle.v1.OrderLifecycle"

// OrderLifecycleServer is the server API of orderlifecycle.v1.OrderLifecycle.
// Requests and responses are google.protobuf.Struct documents with the same
// camelCase fields as the HTTP API.
type OrderLifecycleServer interface {
	CreateOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ConfirmOrder(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error)
	CancelOrder(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error)
	UpdateOrderAmount(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error)
	GetOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetStats(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterOrderLifecycleServer registers srv on s.
func RegisterOrderLifecycleServer(s grpc.ServiceRegistrar, srv OrderLifecycleServer) {
	s.RegisterService(&orderLifecycleServiceDesc, srv)
}

var orderLifecycleServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OrderLifecycleServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateOrder",
			Handler: unaryHandler("CreateOrder", newStruct,
				func(srv OrderLifecycleServer, ctx context.Context, req *structpb.Struct) (proto.Message, error) {
					return srv.CreateOrder(ctx, req)
				}),
		},
		{
			MethodName: "ConfirmOrder",
			Handler: unaryHandler("ConfirmOrder", newStruct,
				func(srv OrderLifecycleServer, ctx context.Context, req *structpb.Struct) (proto.Message, error) {
					return srv.ConfirmOrder(ctx, req)
				}),
		},
		{
			MethodName: "CancelOrder",
			Handler: unaryHandler("CancelOrder", newStruct,
				func(srv OrderLifecycleServer, ctx context.Context, req *structpb.Struct) (proto.Message, error) {
					return srv.CancelOrder(ctx, req)
				}),
		},
		{
			MethodName: "UpdateOrderAmount",
			Handler: unaryHandler("UpdateOrderAmount", newStruct,
				func(srv OrderLifecycleServer, ctx context.Context, req *structpb.Struct) (proto.Message, error) {
					return srv.UpdateOrderAmount(ctx, req)
				}),
		},
		{
			MethodName: "GetOrder",
			Handler: unaryHandler("GetOrder", newStruct,
				func(srv OrderLifecycleServer, ctx context.Context, req *structpb.Struct) (proto.Message, error) {
					return srv.GetOrder(ctx, req)
				}),
		},
		{
			MethodName: "GetStats",
			Handler: unaryHandler("GetStats", newEmpty,
				func(srv OrderLifecycleServer, ctx context.Context, req *emptypb.Empty) (proto.Message, error) {
					return srv.GetStats(ctx, req)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "orderlifecycle/v1/order_lifecycle.proto",
}

func newStruct() *structpb.Struct { return &structpb.Struct{} }

func newEmpty() *emptypb.Empty { return &emptypb.Empty{} }

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

// unaryHandler adapts a typed method to grpc.MethodHandler.
func unaryHandler[Req proto.Message](
	method string,
	newReq func() Req,
	call func(srv OrderLifecycleServer, ctx context.Context, req Req) (proto.Message, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(OrderLifecycleServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(OrderLifecycleServer), ctx, req.(Req))
		}

		return interceptor(ctx, in, info, handler)
	}
}
