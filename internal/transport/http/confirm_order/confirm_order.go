package confirmorder

import (
	"context"
	"net/http"

	"github.com/corray333/order-lifecycle/internal/transport/http/respond"
	"github.com/google/uuid"
)

type service interface {
	ConfirmOrder(ctx context.Context, orderID uuid.UUID) error
}

func ConfirmOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := respond.OrderID(w, r)
	if !ok {
		return
	}

	if err := service.ConfirmOrder(r.Context(), id); err != nil {
		respond.ServiceError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
