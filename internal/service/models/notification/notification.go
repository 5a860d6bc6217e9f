package notification

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind is the lifecycle event a customer is notified about.
type Kind string

const (
	KindConfirmed Kind = "confirmed"
	KindCancelled Kind = "cancelled"
)

// Message is a customer notification about an order.
type Message struct {
	ID            uuid.UUID `json:"id"`
	OrderID       uuid.UUID `json:"orderId"`
	CustomerEmail string    `json:"customerEmail"`
	Kind          Kind      `json:"kind"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewMessage builds the notification text for kind, e.g. "Order <id> confirmed.".
func NewMessage(orderID uuid.UUID, email string, kind Kind, now time.Time) Message {
	return Message{
		ID:            uuid.New(),
		OrderID:       orderID,
		CustomerEmail: email,
		Kind:          kind,
		Text:          fmt.Sprintf("Order %s %s.", orderID, kind),
		CreatedAt:     now,
	}
}

// ErrMalformed is returned by Decode for payloads that are not notifications.
var ErrMalformed = errors.New("malformed notification")

// Decode parses a JSON notification. Messages without an id or order id are malformed.
func Decode(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if msg.ID == uuid.Nil || msg.OrderID == uuid.Nil {
		return Message{}, fmt.Errorf("%w: missing id", ErrMalformed)
	}

	return msg, nil
}
