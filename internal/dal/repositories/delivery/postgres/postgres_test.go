package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/corray333/order-lifecycle/internal/service/models/delivery"
	"github.com/corray333/order-lifecycle/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryRepository(t *testing.T) {
	client := testutil.NewTestClient(t)
	repo := NewDeliveryRepository(client)
	ctx := context.Background()
	testutil.TruncateAll(t, ctx, client)

	d := delivery.Delivery{
		MessageID:     uuid.New(),
		OrderID:       uuid.New(),
		CustomerEmail: "a@example.com",
		Kind:          "confirmed",
		Text:          "Order confirmed.",
		DeliveredAt:   time.Now().UTC(),
	}

	exists, err := repo.Exists(ctx, d.MessageID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Save(ctx, d))
	require.NoError(t, repo.Save(ctx, d))

	exists, err = repo.Exists(ctx, d.MessageID)
	require.NoError(t, err)
	assert.True(t, exists)

	var count int
	require.NoError(t, client.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM notification_log`).Scan(&count))
	assert.Equal(t, 1, count)
}
