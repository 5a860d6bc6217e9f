package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/corray333/order-lifecycle/internal/service/models/notification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyCustomer(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotificationLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	orderID := uuid.New()
	msg := notification.NewMessage(orderID, "a@example.com", notification.KindConfirmed, time.Now())
	require.NoError(t, n.NotifyCustomer(context.Background(), msg))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Customer notified", entry["msg"])
	assert.Equal(t, orderID.String(), entry["order_id"])
	assert.Equal(t, "a@example.com", entry["customer_email"])
	assert.Equal(t, "confirmed", entry["kind"])
	assert.Equal(t, msg.Text, entry["text"])
}
