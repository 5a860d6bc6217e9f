package notificationapp

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/order-lifecycle/internal/dal/postgres"
	"github.com/corray333/order-lifecycle/internal/dal/rabbitmq"
	deliveryrepo "github.com/corray333/order-lifecycle/internal/dal/repositories/delivery/postgres"
	inboxrepo "github.com/corray333/order-lifecycle/internal/dal/repositories/inbox/postgres"
	notificationlogger "github.com/corray333/order-lifecycle/internal/dal/repositories/notification/logger"
	"github.com/corray333/order-lifecycle/internal/otel"
	"github.com/corray333/order-lifecycle/internal/service/services/deliverysvc"
	"github.com/corray333/order-lifecycle/internal/transport/consumer"
	inboxworker "github.com/corray333/order-lifecycle/internal/worker/inbox"
)

const serviceName = "notification-consumer"

// App represents the application.
type App struct {
	deliverySvc    *deliverysvc.DeliveryService
	consumerTransp *consumer.Consumer
	inboxWorker    *inboxworker.Worker
	rabbitMqClient *rabbitmq.Client
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel(serviceName)
	rabbitMqClient := rabbitmq.MustNewClient()
	postgresClient := postgres.MustNewClient()

	deliveryRepository := deliveryrepo.NewDeliveryRepository(postgresClient)
	inboxRepository := inboxrepo.NewInboxRepository(postgresClient)

	deliverySvc := deliverysvc.MustNewDeliveryService(
		deliverysvc.WithDeliveryRepository(deliveryRepository),
		deliverysvc.WithSender(notificationlogger.NewNotificationLogger(slog.Default().With("channel", "email"))),
	)

	consumerTransp := consumer.NewConsumer(rabbitMqClient, deliverySvc, inboxRepository)
	inboxWorker := inboxworker.NewWorker(inboxRepository, deliverySvc)

	return &App{
		deliverySvc:    deliverySvc,
		consumerTransp: consumerTransp,
		inboxWorker:    inboxWorker,
		rabbitMqClient: rabbitMqClient,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting consumer")
		if err := a.consumerTransp.Run(ctx); err != nil {
			slog.Error("Consumer error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting inbox worker")
		a.inboxWorker.Start(ctx)
	}()

	<-stop
	slog.Info("Shutdown signal received")

	// Consumer drains in-flight deliveries before the context is cancelled.
	a.gracefulShutdown()
	cancel()
}

// gracefulShutdown shuts down the inbox worker, consumer, RabbitMQ,
// PostgreSQL and OpenTelemetry in that order.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.inboxWorker.Stop()
	slog.Info("Inbox worker stopped gracefully")

	if err := a.consumerTransp.Shutdown(); err != nil {
		slog.Error("Consumer shutdown error", "error", err)
	} else {
		slog.Info("Consumer stopped gracefully")
	}

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()

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
