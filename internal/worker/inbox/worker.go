package inbox

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/corray333/order-lifecycle/internal/dal/interfaces/iinboxrepo"
	"github.com/corray333/order-lifecycle/internal/service/models/inbox"
	"github.com/corray333/order-lifecycle/internal/service/models/notification"
	"github.com/spf13/viper"
)

// service represents the service layer interface.
type service interface {
	Deliver(ctx context.Context, msg notification.Message) error
}

// Worker retries notifications parked in the inbox table.
type Worker struct {
	inboxRepo    iinboxrepo.IInboxRepository
	service      service
	pollInterval time.Duration
	batchSize    int
	now          func() time.Time
	stopCh       chan struct{}
}

// NewWorker creates a new inbox worker.
func NewWorker(inboxRepo iinboxrepo.IInboxRepository, service service) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.inbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.inbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	return &Worker{
		inboxRepo:    inboxRepo,
		service:      service,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		now:          time.Now,
		stopCh:       make(chan struct{}),
	}
}

// Start begins processing messages from the inbox.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Inbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Inbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Inbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

func backoff(retryCount int) time.Duration {
	return time.Duration(math.Pow(2, float64(retryCount))*30) * time.Second
}

func (w *Worker) processMessages(ctx context.Context) {
	messages, err := w.inboxRepo.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending messages from inbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Processing inbox messages", "count", len(messages))

	for _, msg := range messages {
		w.processMessage(ctx, msg)
	}
}

func (w *Worker) processMessage(ctx context.Context, msg inbox.InboxMessage) {
	err := w.deliver(ctx, msg)
	if err == nil {
		if err := w.inboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to delete message from inbox after successful processing",
				"inbox_id", msg.ID,
				"error", err,
			)

			return
		}

		slog.Info("Message successfully processed and removed from inbox",
			"inbox_id", msg.ID,
			"message_id", msg.MessageID,
		)

		return
	}

	retryCount := msg.RetryCount + 1
	if errors.Is(err, notification.ErrMalformed) && retryCount >= msg.MaxRetries {
		slog.Warn("Max retries reached for malformed message, deleting",
			"inbox_id", msg.ID,
			"message_id", msg.MessageID,
		)
		if err := w.inboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to delete message from inbox", "inbox_id", msg.ID, "error", err)
		}

		return
	}

	nextRetryAt := w.now().Add(backoff(retryCount))

	slog.Warn("Failed to process message from inbox, will retry",
		"inbox_id", msg.ID,
		"retry_count", retryCount,
		"next_retry", nextRetryAt,
		"error", err,
	)

	if err := w.inboxRepo.UpdateRetry(ctx, msg.ID, retryCount, err.Error(), nextRetryAt); err != nil {
		slog.Error("Failed to update retry information", "inbox_id", msg.ID, "error", err)
	}
}

func (w *Worker) deliver(ctx context.Context, msg inbox.InboxMessage) error {
	n, err := notification.Decode(msg.Payload)
	if err != nil {
		return err
	}

	return w.service.Deliver(ctx, n)
}
