package orderapp

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/order-lifecycle/internal/dal/interfaces/inotifier"
	"github.com/corray333/order-lifecycle/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/order-lifecycle/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/order-lifecycle/internal/dal/postgres"
	"github.com/corray333/order-lifecycle/internal/dal/rabbitmq"
	notificationlogger "github.com/corray333/order-lifecycle/internal/dal/repositories/notification/logger"
	notificationrabbitmq "github.com/corray333/order-lifecycle/internal/dal/repositories/notification/rabbitmq"
	memoryrepo "github.com/corray333/order-lifecycle/internal/dal/repositories/order/memory"
	postgresrepo "github.com/corray333/order-lifecycle/internal/dal/repositories/order/postgres"
	outboxrepo "github.com/corray333/order-lifecycle/internal/dal/repositories/outbox/postgres"
	"github.com/corray333/order-lifecycle/internal/otel"
	"github.com/corray333/order-lifecycle/internal/service/services/ordersvc"
	grpctransport "github.com/corray333/order-lifecycle/internal/transport/grpc"
	httptransport "github.com/corray333/order-lifecycle/internal/transport/http"
	outboxworker "github.com/corray333/order-lifecycle/internal/worker/outbox"
	"github.com/corray333/order-lifecycle/pkg/metrics"
	"github.com/spf13/viper"
)

const (
	serviceName = "order-svc"

	storageDriverPostgres      = "postgres"
	notificationDriverRabbitMQ = "rabbitmq"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	httpTransport  *httptransport.HTTPTransport
	grpcTransport  *grpctransport.GRPCTransport
	outboxWorker   *outboxworker.Worker
	rabbitMqClient *rabbitmq.Client
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application. Storage and notification backends
// are chosen by storage.driver and notifications.driver.
func MustNewApp() *App {
	a := &App{
		otelController: otel.MustInitOtel(serviceName),
	}

	orderRepo := a.mustNewOrderRepository()
	notifier := a.mustNewNotifier()

	a.orderSvc = ordersvc.MustNewOrderService(
		ordersvc.WithOrderRepository(orderRepo),
		ordersvc.WithNotificationService(notifier),
	)

	serverMetrics := metrics.NewServerMetrics("order_svc")
	serverMetrics.GaugeFunc("orders_created", "Live orders created by this instance.", func() float64 {
		return float64(a.orderSvc.TotalCreatedOrders())
	})
	serverMetrics.GaugeFunc("orders_confirmed", "Live confirmed orders of this instance.", func() float64 {
		return float64(a.orderSvc.TotalConfirmedOrders())
	})

	a.httpTransport = httptransport.NewHTTPTransport(a.orderSvc, serverMetrics)
	a.httpTransport.RegisterRoutes()

	a.grpcTransport = grpctransport.NewGRPCTransport(a.orderSvc, serverMetrics)

	return a
}

func (a *App) mustNewOrderRepository() iorderrepo.IOrderRepository {
	if viper.GetString("storage.driver") != storageDriverPostgres {
		slog.Info("Using in-memory order storage")
		return memoryrepo.NewOrderRepository()
	}

	a.postgresClient = postgres.MustNewClient()

	return postgresrepo.NewOrderRepository(a.postgresClient)
}

func (a *App) mustNewNotifier() inotifier.INotificationService {
	if viper.GetString("notifications.driver") != notificationDriverRabbitMQ {
		slog.Info("Using log notifications")
		return notificationlogger.NewNotificationLogger(nil)
	}

	a.rabbitMqClient = rabbitmq.MustNewClient()

	var outboxRepo ioutboxrepo.IOutboxRepository
	if a.postgresClient != nil {
		repo := outboxrepo.NewOutboxRepository(a.postgresClient)
		outboxRepo = repo
		a.outboxWorker = outboxworker.NewWorker(repo, a.rabbitMqClient)
	} else {
		slog.Warn("Outbox is disabled without postgres storage, failed notifications are returned to callers")
	}

	return notificationrabbitmq.MustNewNotificationRabbitMQRepository(a.rabbitMqClient, outboxRepo)
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.httpTransport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting gRPC server")
		if err := a.grpcTransport.Run(); err != nil {
			slog.Error("gRPC server error", "error", err)
		}
	}()

	if a.outboxWorker != nil {
		go func() {
			slog.Info("Starting outbox worker")
			a.outboxWorker.Start(ctx)
		}()
	}

	<-stop
	slog.Info("Shutdown signal received")
	cancel()

	a.gracefulShutdown()
}

// gracefulShutdown stops the servers first, then the outbox worker, then the
// broker, database and tracer provider.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpTransport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.grpcTransport.Shutdown(ctx); err != nil {
		slog.Error("gRPC server shutdown error", "error", err)
	} else {
		slog.Info("gRPC server stopped gracefully")
	}

	if a.outboxWorker != nil {
		a.outboxWorker.Stop()
		slog.Info("Outbox worker stopped gracefully")
	}

	if a.rabbitMqClient != nil {
		if err := a.rabbitMqClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		} else {
			slog.Info("RabbitMQ connection closed gracefully")
		}
	}

	if a.postgresClient != nil {
		a.postgresClient.Close()
		slog.Info("Database connection closed gracefully")
	}

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider shutdown error", "error", err)
	} else {
		slog.Info("Otel trace provider stopped gracefully")
	}

	select {
	case <-ctx.Done():
		slog.Warn("Shutdown timeout exceeded")
	default:
		slog.Info("Application shutdown complete")
	}
}
