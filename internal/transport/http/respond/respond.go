package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	CodeInvalidArgument    = "invalid_argument"
	CodeOrderNotFound      = "order_not_found"
	CodeInvalidID          = "invalid_id"
	CodeInvalidRequestBody = "invalid_request_body"
	CodeInvalidQuery       = "invalid_query"
	CodeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

// Error writes an error body {"error","code"}.
func Error(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))

		return
	}
	_, _ = w.Write(payload)
}

// ServiceError maps an order service error to a response.
func ServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrInvalidArgument):
		Error(w, http.StatusBadRequest, CodeInvalidArgument, err.Error())
	case errors.Is(err, order.ErrNotFound):
		Error(w, http.StatusNotFound, CodeOrderNotFound, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Error handling request", "error", err, "path", r.URL.Path)
		Error(w, http.StatusInternalServerError, CodeInternalError, "internal error")
	}
}

// OrderID parses the {id} URL parameter. On failure it writes a 400 and
// returns false.
func OrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, CodeInvalidID, "invalid order id")

		return uuid.Nil, false
	}

	return id, true
}
