package outbox

import (
	"time"
)

// OutboxMessage represents a notification that failed to be published to RabbitMQ.
type OutboxMessage struct {
	ID           int64
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	// MessageID and MessageTimestamp are the AMQP headers of the original publish.
	MessageID        string
	MessageTimestamp time.Time
	RetryCount       int
	MaxRetries       int
	LastError        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	NextRetryAt      time.Time
}
