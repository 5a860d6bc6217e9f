package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/corray333/order-lifecycle/internal/dal/interfaces/iinboxrepo"
	"github.com/corray333/order-lifecycle/internal/dal/rabbitmq"
	"github.com/corray333/order-lifecycle/internal/service/models/inbox"
	"github.com/corray333/order-lifecycle/internal/service/models/notification"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const defaultQueueName = "order.notifications"

// service represents the service layer interface.
type service interface {
	Deliver(ctx context.Context, msg notification.Message) error
}

// Consumer reads customer notifications from RabbitMQ.
type Consumer struct {
	client     *rabbitmq.Client
	service    service
	inboxRepo  iinboxrepo.IInboxRepository
	queue      amqp.Queue
	maxRetries int
	now        func() time.Time
	stop       chan struct{}
	done       chan struct{}
}

// NewConsumer declares the notification queue and creates a Consumer.
func NewConsumer(client *rabbitmq.Client, service service, inboxRepo iinboxrepo.IInboxRepository) *Consumer {
	queueName := viper.GetString("rabbitmq.notifications.queue")
	if queueName == "" {
		queueName = defaultQueueName
	}

	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:    queueName,
		Durable: viper.GetBool("rabbitmq.notifications.durable"),
	})
	if err != nil {
		panic(err)
	}

	maxRetries := viper.GetInt("rabbitmq.inbox.max_retries")
	if maxRetries == 0 {
		maxRetries = 5
	}

	return &Consumer{
		client:     client,
		service:    service,
		inboxRepo:  inboxRepo,
		queue:      queue,
		maxRetries: maxRetries,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run consumes messages until Shutdown is called, ctx is done or the channel
// closes, then waits for in-flight messages.
func (c *Consumer) Run(ctx context.Context) error {
	consumerTag := viper.GetString("rabbitmq.consumer_tag")
	if consumerTag == "" {
		consumerTag = "notification-consumer"
	}

	msgs, err := c.client.Consume(rabbitmq.ConsumeConfig{
		Queue:    c.queue.Name,
		Consumer: consumerTag,
	})
	if err != nil {
		close(c.done)

		return err
	}

	slog.Info("Consumer started", "queue", c.queue.Name, "consumer_tag", consumerTag)

	concurrency := viper.GetInt("rabbitmq.concurrency")
	if concurrency == 0 {
		concurrency = 50
	}

	return c.serve(ctx, msgs, concurrency)
}

// serve dispatches msgs to at most concurrency goroutines. Messages already
// taken from the channel are processed to completion even after ctx is done.
func (c *Consumer) serve(ctx context.Context, msgs <-chan amqp.Delivery, concurrency int) error {
	defer close(c.done)

	var g errgroup.Group
	g.SetLimit(concurrency)
	workCtx := context.WithoutCancel(ctx)

loop:
	for {
		select {
		case <-c.stop:
			slog.Info("Stopping consumer")

			break loop
		case <-ctx.Done():
			slog.Info("Consumer context done")

			break loop
		case msg, ok := <-msgs:
			if !ok {
				slog.Info("Message channel closed")

				break loop
			}

			g.Go(func() error {
				c.processMessage(workCtx, msg)

				return nil
			})
		}
	}

	return g.Wait()
}

// processMessage delivers one notification. Failures are parked in the
// inbox and acked; the message is requeued only when the inbox write fails.
func (c *Consumer) processMessage(ctx context.Context, msg amqp.Delivery) {
	ctx, span := otel.Tracer("consumer").Start(ctx, "Consumer.processMessage")
	defer span.End()

	slog.Info("Received message", "delivery_tag", msg.DeliveryTag, "message_id", msg.MessageId)

	n, err := notification.Decode(msg.Body)
	if err == nil {
		err = c.service.Deliver(ctx, n)
	}
	delivered := err == nil

	if !delivered {
		slog.Error("Failed to deliver notification, saving to inbox", "error", err, "message_id", msg.MessageId)

		now := c.now()
		inboxErr := c.inboxRepo.Insert(ctx, inbox.InboxMessage{
			MessageID:   msg.MessageId,
			QueueName:   c.queue.Name,
			RoutingKey:  msg.RoutingKey,
			Payload:     msg.Body,
			ContentType: msg.ContentType,
			MaxRetries:  c.maxRetries,
			LastError:   err.Error(),
			CreatedAt:   now,
			UpdatedAt:   now,
			NextRetryAt: now.Add(30 * time.Second),
		})
		if inboxErr != nil {
			slog.Error("Failed to save message to inbox", "error", inboxErr, "message_id", msg.MessageId)
			if err := msg.Nack(false, true); err != nil {
				slog.Error("Failed to nack message", "error", err)
			}

			return
		}
	}

	if err := msg.Ack(false); err != nil {
		slog.Error("Failed to ack message", "error", err)

		return
	}

	if delivered {
		slog.Info("Message processed successfully", "order_id", n.OrderID)
	}
}

// Shutdown stops consuming and waits up to 10s for Run to finish the
// messages it already received.
func (c *Consumer) Shutdown() error {
	slog.Info("Shutting down consumer")
	close(c.stop)

	select {
	case <-c.done:
		slog.Info("Consumer stopped successfully")
	case <-time.After(10 * time.Second):
		slog.Warn("Consumer shutdown timeout")
	}

	return nil
}
