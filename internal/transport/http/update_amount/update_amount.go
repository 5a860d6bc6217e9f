package updateamount

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/order-lifecycle/internal/transport/http/respond"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service interface {
	UpdateOrderAmount(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) error
}

type updateAmountRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// UpdateAmount handles PATCH /orders/{id}/amount.
func UpdateAmount(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := respond.OrderID(w, r)
	if !ok {
		return
	}

	req := updateAmountRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Error decoding request body for update amount", "error", err)
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidRequestBody, err.Error())

		return
	}
	if req.Amount == nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidRequestBody, "amount is required")

		return
	}

	if err := service.UpdateOrderAmount(r.Context(), id, *req.Amount); err != nil {
		respond.ServiceError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
