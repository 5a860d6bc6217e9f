package getorder

import (
	"context"
	"net/http"

	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/corray333/order-lifecycle/internal/transport/http/respond"
	"github.com/google/uuid"
)

type service interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
}

// GetOrder responds with the order or 404 when it does not exist.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := respond.OrderID(w, r)
	if !ok {
		return
	}

	o, err := service.GetOrder(r.Context(), id)
	if err != nil {
		respond.ServiceError(w, r, err)

		return
	}
	if o == nil {
		respond.Error(w, http.StatusNotFound, respond.CodeOrderNotFound, "order not found: "+id.String())

		return
	}

	respond.JSON(w, http.StatusOK, o)
}
