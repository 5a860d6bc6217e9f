package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/order-lifecycle/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/order-lifecycle/internal/dal/rabbitmq"
	"github.com/corray333/order-lifecycle/internal/service/models/notification"
	"github.com/corray333/order-lifecycle/internal/service/models/outbox"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
)

const (
	defaultQueueName  = "order.notifications"
	defaultMaxRetries = 5
)

// client is the part of the RabbitMQ client used by the notifier.
type client interface {
	DeclareQueue(cfg rabbitmq.DeclareQueueConfig) (amqp.Queue, error)
	Publish(exchange, routingKey string, msg amqp.Publishing) error
}

// NotificationRabbitMQRepository publishes customer notifications to a queue.
// Messages that cannot be published are parked in the outbox.
type NotificationRabbitMQRepository struct {
	client        client
	outboxRepo    ioutboxrepo.IOutboxRepository
	queue         amqp.Queue
	maxRetries    int
	retryInterval time.Duration
	now           func() time.Time
}

// MustNewNotificationRabbitMQRepository declares the notification queue and
// creates the notifier. outboxRepo may be nil, then publish errors are returned.
func MustNewNotificationRabbitMQRepository(
	client client,
	outboxRepo ioutboxrepo.IOutboxRepository,
) *NotificationRabbitMQRepository {
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

	maxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	retryIntervalSeconds := viper.GetInt("rabbitmq.outbox.retry_interval_seconds")
	if retryIntervalSeconds == 0 {
		retryIntervalSeconds = 30
	}

	return &NotificationRabbitMQRepository{
		client:        client,
		outboxRepo:    outboxRepo,
		queue:         queue,
		maxRetries:    maxRetries,
		retryInterval: time.Duration(retryIntervalSeconds) * time.Second,
		now:           time.Now,
	}
}

// NotifyCustomer publishes msg as JSON. A failed publish is stored in the
// outbox and is not reported to the caller.
func (r *NotificationRabbitMQRepository) NotifyCustomer(ctx context.Context, msg notification.Message) error {
	ctx, span := otel.Tracer("notifier").Start(ctx, "NotificationRabbitMQRepository.NotifyCustomer")
	defer span.End()

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	publishErr := r.client.Publish("", r.queue.Name, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    msg.ID.String(),
		Timestamp:    msg.CreatedAt,
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
	if publishErr == nil {
		return nil
	}

	if r.outboxRepo == nil {
		return fmt.Errorf("failed to publish notification: %w", publishErr)
	}

	slog.Warn("Failed to publish notification, saving to outbox",
		"message_id", msg.ID,
		"order_id", msg.OrderID,
		"error", publishErr,
	)

	now := r.now()
	err = r.outboxRepo.Insert(ctx, outbox.OutboxMessage{
		QueueName:        r.queue.Name,
		RoutingKey:       r.queue.Name,
		Payload:          payload,
		ContentType:      "application/json",
		MessageID:        msg.ID.String(),
		MessageTimestamp: msg.CreatedAt,
		MaxRetries:       r.maxRetries,
		LastError:        publishErr.Error(),
		CreatedAt:        now,
		UpdatedAt:        now,
		NextRetryAt:      now.Add(r.retryInterval),
	})
	if err != nil {
		return fmt.Errorf("failed to save notification to outbox: %w", errors.Join(publishErr, err))
	}

	return nil
}
