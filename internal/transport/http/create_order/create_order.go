package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/corray333/order-lifecycle/internal/transport/http/respond"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, email string, amount decimal.Decimal) (order.Order, error)
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	CustomerEmail string          `json:"customerEmail" validate:"required,email"`
	Amount        decimal.Decimal `json:"amount"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validate.Struct(r)
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Error decoding request body for create order", "error", err)
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidRequestBody, err.Error())

		return
	}

	if err := req.Validate(); err != nil {
		slog.Error("Error validating request body for create order", "error", err)
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidRequestBody, err.Error())

		return
	}

	created, err := service.CreateOrder(r.Context(), req.CustomerEmail, req.Amount)
	if err != nil {
		respond.ServiceError(w, r, err)

		return
	}

	respond.JSON(w, http.StatusCreated, created)
}
