package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a single customer purchase intent.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	CustomerEmail string          `json:"customerEmail"`
	Amount        decimal.Decimal `json:"amount"`
	IsConfirmed   bool            `json:"isConfirmed"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Confirm marks the order as confirmed. Confirmation is one-way.
func (o *Order) Confirm() {
	o.IsConfirmed = true
}

// ValidAmount reports whether amount can be stored on an order.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.Sign() > 0
}
