package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/corray333/order-lifecycle/internal/transport/http/respond"
	"github.com/google/uuid"
	"github.com/gorilla/schema"
)

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}()

type service interface {
	ListOrders(ctx context.Context, model order.QueryOrdersModel) ([]order.Order, error)
}

type queryOrdersRequest struct {
	Ids            []string `schema:"ids"`
	CustomerEmails []string `schema:"customerEmails"`
	Confirmed      *bool    `schema:"confirmed"`
	Page           int      `schema:"page"`
	PageSize       int      `schema:"pageSize"`
}

func (q *queryOrdersRequest) ToModel() (order.QueryOrdersModel, error) {
	ids := make([]uuid.UUID, 0, len(q.Ids))
	for _, raw := range q.Ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return order.QueryOrdersModel{}, err
		}
		ids = append(ids, id)
	}

	return order.QueryOrdersModel{
		Ids:            ids,
		CustomerEmails: q.CustomerEmails,
		Confirmed:      q.Confirmed,
		Page:           q.Page,
		PageSize:       q.PageSize,
	}, nil
}

func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		slog.Error("Error decoding request", "error", err)
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidQuery, err.Error())

		return
	}

	model, err := query.ToModel()
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidID, err.Error())

		return
	}

	orders, err := service.ListOrders(r.Context(), model)
	if err != nil {
		respond.ServiceError(w, r, err)

		return
	}

	respond.JSON(w, http.StatusOK, orders)
}
