package delivery

import (
	"time"

	"github.com/google/uuid"
)

// Delivery records a notification handed to the customer.
type Delivery struct {
	ID            int64     `json:"id"`
	MessageID     uuid.UUID `json:"messageId"`
	OrderID       uuid.UUID `json:"orderId"`
	CustomerEmail string    `json:"customerEmail"`
	Kind          string    `json:"kind"`
	Text          string    `json:"text"`
	DeliveredAt   time.Time `json:"deliveredAt"`
}
