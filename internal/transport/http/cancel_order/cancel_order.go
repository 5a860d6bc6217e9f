package cancelorder

import (
	"context"
	"net/http"

	"github.com/corray333/order-lifecycle/internal/transport/http/respond"
	"github.com/google/uuid"
)

type service interface {
	CancelOrder(ctx context.Context, orderID uuid.UUID) error
}

func CancelOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := respond.OrderID(w, r)
	if !ok {
		return
	}

	if err := service.CancelOrder(r.Context(), id); err != nil {
		respond.ServiceError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
