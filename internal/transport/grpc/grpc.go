package grpctransport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/corray333/order-lifecycle/internal/service/services/ordersvc"
	"github.com/corray333/order-lifecycle/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, email string, amount decimal.Decimal) (order.Order, error)
	ConfirmOrder(ctx context.Context, orderID uuid.UUID) error
	CancelOrder(ctx context.Context, orderID uuid.UUID) error
	UpdateOrderAmount(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	Stats() ordersvc.Stats
}

// GRPCTransport represents the gRPC transport layer.
type GRPCTransport struct {
	server      *grpc.Server
	orderServer *OrderServer
}

// NewGRPCTransport creates a new GRPCTransport with the order service registered.
func NewGRPCTransport(service service, serverMetrics *metrics.ServerMetrics) *GRPCTransport {
	orderServer := NewOrderServer(service)
	server := newGRPCServer(serverMetrics)
	RegisterOrderLifecycleServer(server, orderServer)

	return &GRPCTransport{
		server:      server,
		orderServer: orderServer,
	}
}

// Run listens on server.grpc.port and serves until Shutdown.
func (g *GRPCTransport) Run() error {
	port := viper.GetString("server.grpc.port")
	if port == "" {
		port = "9090"
	}

	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}

	return g.Serve(listener)
}

// Serve serves on an existing listener.
func (g *GRPCTransport) Serve(listener net.Listener) error {
	slog.Info("Starting gRPC server", "address", listener.Addr().String())

	return g.server.Serve(listener)
}

// Shutdown gracefully shuts down the gRPC server.
func (g *GRPCTransport) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		g.server.Stop()

		return ctx.Err()
	}
}

// newGRPCServer creates a new gRPC server with keepalive settings from the config.
func newGRPCServer(serverMetrics *metrics.ServerMetrics) *grpc.Server {
	keepaliveParams := keepalive.ServerParameters{
		MaxConnectionIdle: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_idle"),
		) * time.Minute,
		MaxConnectionAge: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_age"),
		) * time.Minute,
		MaxConnectionAgeGrace: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_age_grace"),
		) * time.Second,
		Time: time.Duration(
			viper.GetInt("server.grpc.keepalive.time"),
		) * time.Second,
		Timeout: time.Duration(
			viper.GetInt("server.grpc.keepalive.timeout"),
		) * time.Second,
	}

	keepalivePolicy := keepalive.EnforcementPolicy{
		MinTime: time.Duration(
			viper.GetInt("server.grpc.keepalive.min_time"),
		) * time.Second,
		PermitWithoutStream: viper.GetBool("server.grpc.keepalive.permit_without_stream"),
	}

	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepaliveParams),
		grpc.KeepaliveEnforcementPolicy(keepalivePolicy),
		grpc.ChainUnaryInterceptor(
			loggingInterceptor(serverMetrics),
			recoveryInterceptor(),
		),
	}

	return grpc.NewServer(opts...)
}

// recoveryInterceptor turns a handler panic into codes.Internal.
func recoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.ErrorContext(ctx, "gRPC handler panicked",
					"method", info.FullMethod,
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()),
				)
				err = status.Error(codes.Internal, "internal error")
			}
		}()

		return handler(ctx, req)
	}
}

// loggingInterceptor logs and counts every unary call.
func loggingInterceptor(serverMetrics *metrics.ServerMetrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		if serverMetrics != nil {
			serverMetrics.Observe(info.FullMethod, code.String(), start)
		}

		slog.InfoContext(ctx, "gRPC request completed",
			"method", info.FullMethod,
			"code", code.String(),
			"duration", time.Since(start).String(),
		)

		return resp, err
	}
}
