package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/corray333/order-lifecycle/internal/service/models/outbox"
	"github.com/corray333/order-lifecycle/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepository(t *testing.T) {
	client := testutil.NewTestClient(t)
	repo := NewOutboxRepository(client)
	ctx := context.Background()
	testutil.TruncateAll(t, ctx, client)

	now := time.Now().UTC()
	due := outbox.OutboxMessage{
		QueueName:        "order.notifications",
		RoutingKey:       "order.notifications",
		Payload:          []byte(`{"kind":"confirmed"}`),
		ContentType:      "application/json",
		MessageID:        "6f1c2a34-9d7e-4b8a-a1f0-3c2b1d0e9f8a",
		MessageTimestamp: now.Add(-time.Hour),
		MaxRetries:       3,
		CreatedAt:        now,
		UpdatedAt:        now,
		NextRetryAt:      now.Add(-time.Minute),
	}
	later := due
	later.NextRetryAt = now.Add(time.Hour)

	require.NoError(t, repo.Insert(ctx, due))
	require.NoError(t, repo.Insert(ctx, later))

	pending, err := repo.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, due.Payload, pending[0].Payload)
	assert.Equal(t, "order.notifications", pending[0].QueueName)
	assert.Equal(t, due.MessageID, pending[0].MessageID)
	assert.WithinDuration(t, due.MessageTimestamp, pending[0].MessageTimestamp, time.Millisecond)

	require.NoError(t, repo.UpdateRetry(ctx, pending[0].ID, 3, "boom", now.Add(-time.Second)))

	pending, err = repo.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "exhausted messages are not pending")

	_, err = client.Pool().Exec(ctx, `UPDATE outbox SET next_retry_at = $1`, now.Add(-time.Minute))
	require.NoError(t, err)

	pending, err = repo.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, repo.Delete(ctx, pending[0].ID))

	pending, err = repo.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
