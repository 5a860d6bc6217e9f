package postgresrepo

import (
	"context"
	"testing"
	"time"

	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/corray333/order-lifecycle/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(email, amount string, createdAt time.Time) order.Order {
	return order.Order{
		ID:            uuid.New(),
		CustomerEmail: email,
		Amount:        decimal.RequireFromString(amount),
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestOrderRepository(t *testing.T) {
	client := testutil.NewTestClient(t)
	repo := NewOrderRepository(client)
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("GetByID returns nil for a missing order", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, client)

		got, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Save inserts and then updates", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, client)

		o := newOrder("a@example.com", "10.50", now)
		require.NoError(t, repo.Save(ctx, o))

		got, err := repo.GetByID(ctx, o.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, o.CustomerEmail, got.CustomerEmail)
		assert.True(t, o.Amount.Equal(got.Amount), "amount %s", got.Amount)
		assert.False(t, got.IsConfirmed)
		assert.True(t, o.CreatedAt.Equal(got.CreatedAt))

		o.Confirm()
		o.Amount = decimal.RequireFromString("99.99")
		o.UpdatedAt = now.Add(time.Minute)
		require.NoError(t, repo.Save(ctx, o))

		got, err = repo.GetByID(ctx, o.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsConfirmed)
		assert.Equal(t, "99.99", got.Amount.String())
		assert.True(t, o.UpdatedAt.Equal(got.UpdatedAt))

		all, err := repo.Query(ctx, &order.QueryOrdersModel{})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("Delete removes the order and tolerates missing ids", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, client)

		o := newOrder("a@example.com", "1", now)
		require.NoError(t, repo.Save(ctx, o))
		require.NoError(t, repo.Delete(ctx, o.ID))
		require.NoError(t, repo.Delete(ctx, o.ID))

		got, err := repo.GetByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Query filters and pages in creation order", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, client)

		first := newOrder("a@example.com", "1", now)
		second := newOrder("b@example.com", "2", now.Add(time.Second))
		third := newOrder("a@example.com", "3", now.Add(2*time.Second))
		third.Confirm()
		for _, o := range []order.Order{third, first, second} {
			require.NoError(t, repo.Save(ctx, o))
		}

		got, err := repo.Query(ctx, &order.QueryOrdersModel{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, first.ID, got[0].ID)
		assert.Equal(t, second.ID, got[1].ID)
		assert.Equal(t, third.ID, got[2].ID)

		got, err = repo.Query(ctx, &order.QueryOrdersModel{CustomerEmails: []string{"a@example.com"}})
		require.NoError(t, err)
		require.Len(t, got, 2)

		confirmed := true
		got, err = repo.Query(ctx, &order.QueryOrdersModel{Confirmed: &confirmed})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, third.ID, got[0].ID)

		got, err = repo.Query(ctx, &order.QueryOrdersModel{Ids: []uuid.UUID{first.ID, third.ID}})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = repo.Query(ctx, &order.QueryOrdersModel{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, second.ID, got[0].ID)
	})
}
