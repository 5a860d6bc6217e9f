package stats

import (
	"net/http"

	"github.com/corray333/order-lifecycle/internal/service/services/ordersvc"
	"github.com/corray333/order-lifecycle/internal/transport/http/respond"
)

type service interface {
	Stats() ordersvc.Stats
}

func Stats(w http.ResponseWriter, _ *http.Request, service service) {
	respond.JSON(w, http.StatusOK, service.Stats())
}
