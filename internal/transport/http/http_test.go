package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	notificationlogger "github.com/corray333/order-lifecycle/internal/dal/repositories/notification/logger"
	memoryrepo "github.com/corray333/order-lifecycle/internal/dal/repositories/order/memory"
	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/corray333/order-lifecycle/internal/service/services/ordersvc"
	"github.com/corray333/order-lifecycle/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func newTestServer(t *testing.T) (*httptest.Server, *ordersvc.OrderService) {
	t.Helper()
	svc := ordersvc.MustNewOrderService(
		ordersvc.WithOrderRepository(memoryrepo.NewOrderRepository()),
		ordersvc.WithNotificationService(notificationlogger.NewNotificationLogger(
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)),
	)

	return serve(t, svc), svc
}

func serve(t *testing.T, svc service) *httptest.Server {
	t.Helper()
	transport := NewHTTPTransport(svc, metrics.NewServerMetrics("test"))
	transport.RegisterRoutes()

	srv := httptest.NewServer(transport.Handler())
	t.Cleanup(srv.Close)

	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))

	return v
}

func createOrder(t *testing.T, srv *httptest.Server, email, amount string) order.Order {
	t.Helper()
	resp := do(t, http.MethodPost, srv.URL+"/api/orders", `{"customerEmail":"`+email+`","amount":"`+amount+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	return decode[order.Order](t, resp)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	srv, svc := newTestServer(t)

	created := createOrder(t, srv, "a@example.com", "10.50")
	assert.Equal(t, "a@example.com", created.CustomerEmail)
	assert.Equal(t, "10.5", created.Amount.String())
	assert.False(t, created.IsConfirmed)

	resp := do(t, http.MethodGet, srv.URL+"/api/orders/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decode[order.Order](t, resp).ID)

	resp = do(t, http.MethodPost, srv.URL+"/api/orders/"+created.ID.String()+"/confirm", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodPatch, srv.URL+"/api/orders/"+created.ID.String()+"/amount", `{"amount":42}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	got, err := svc.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsConfirmed)
	assert.True(t, decimal.NewFromInt(42).Equal(got.Amount))

	resp = do(t, http.MethodGet, srv.URL+"/api/orders/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ordersvc.Stats{TotalCreated: 1, TotalConfirmed: 1}, decode[ordersvc.Stats](t, resp))

	resp = do(t, http.MethodDelete, srv.URL+"/api/orders/"+created.ID.String(), "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/orders/"+created.ID.String(), "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "order_not_found", decode[errorResponse](t, resp).Code)

	assert.Equal(t, ordersvc.Stats{}, svc.Stats())
}

func TestListOrders(t *testing.T) {
	srv, _ := newTestServer(t)

	first := createOrder(t, srv, "a@example.com", "1")
	createOrder(t, srv, "b@example.com", "2")
	third := createOrder(t, srv, "a@example.com", "3")

	resp := do(t, http.MethodGet, srv.URL+"/api/orders?customerEmails=a@example.com", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	orders := decode[[]order.Order](t, resp)
	require.Len(t, orders, 2)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, third.ID}, []uuid.UUID{orders[0].ID, orders[1].ID})

	resp = do(t, http.MethodGet, srv.URL+"/api/orders?pageSize=2&page=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]order.Order](t, resp), 1)

	resp = do(t, http.MethodGet, srv.URL+"/api/orders?confirmed=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]order.Order](t, resp))

	resp = do(t, http.MethodGet, srv.URL+"/api/orders?ids=nope", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_id", decode[errorResponse](t, resp).Code)

	resp = do(t, http.MethodGet, srv.URL+"/api/orders?page=abc", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_query", decode[errorResponse](t, resp).Code)
}

func TestErrorMapping(t *testing.T) {
	srv, _ := newTestServer(t)
	missing := uuid.New().String()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"non-positive amount", http.MethodPost, "/api/orders", `{"customerEmail":"a@example.com","amount":"0"}`, http.StatusBadRequest, "invalid_argument"},
		{"negative amount", http.MethodPost, "/api/orders", `{"customerEmail":"a@example.com","amount":-5}`, http.StatusBadRequest, "invalid_argument"},
		{"malformed body", http.MethodPost, "/api/orders", `{"customerEmail":`, http.StatusBadRequest, "invalid_request_body"},
		{"invalid email", http.MethodPost, "/api/orders", `{"customerEmail":"nope","amount":"1"}`, http.StatusBadRequest, "invalid_request_body"},
		{"invalid id", http.MethodGet, "/api/orders/123", "", http.StatusBadRequest, "invalid_id"},
		{"confirm missing", http.MethodPost, "/api/orders/" + missing + "/confirm", "", http.StatusNotFound, "order_not_found"},
		{"cancel missing", http.MethodDelete, "/api/orders/" + missing, "", http.StatusNotFound, "order_not_found"},
		{"update missing", http.MethodPatch, "/api/orders/" + missing + "/amount", `{"amount":"5"}`, http.StatusNotFound, "order_not_found"},
		{"update invalid amount", http.MethodPatch, "/api/orders/" + missing + "/amount", `{"amount":"-1"}`, http.StatusBadRequest, "invalid_argument"},
		{"update without amount", http.MethodPatch, "/api/orders/" + missing + "/amount", `{}`, http.StatusBadRequest, "invalid_request_body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body)
			require.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decode[errorResponse](t, resp).Code)
		})
	}
}

var errStorage = errors.New("connection refused")

type failingService struct{}

func (failingService) CreateOrder(context.Context, string, decimal.Decimal) (order.Order, error) {
	return order.Order{}, errStorage
}

func (failingService) ConfirmOrder(context.Context, uuid.UUID) error { return errStorage }

func (failingService) CancelOrder(context.Context, uuid.UUID) error { return errStorage }

func (failingService) UpdateOrderAmount(context.Context, uuid.UUID, decimal.Decimal) error {
	return errStorage
}

func (failingService) GetOrder(context.Context, uuid.UUID) (*order.Order, error) {
	return nil, errStorage
}

func (failingService) ListOrders(context.Context, order.QueryOrdersModel) ([]order.Order, error) {
	return nil, errStorage
}

func (failingService) Stats() ordersvc.Stats { return ordersvc.Stats{} }

func TestInternalErrorsAreHidden(t *testing.T) {
	srv := serve(t, failingService{})

	for _, path := range []string{"/api/orders/" + uuid.New().String(), "/api/orders"} {
		resp := do(t, http.MethodGet, srv.URL+path, "")
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decode[errorResponse](t, resp)
		assert.Equal(t, "internal_error", body.Code)
		assert.NotContains(t, body.Error, "connection refused")
	}
}

func TestMetricsAndSwagger(t *testing.T) {
	srv, _ := newTestServer(t)
	createOrder(t, srv, "a@example.com", "1")

	resp := do(t, http.MethodGet, srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `handler="POST /api/orders`)

	resp = do(t, http.MethodGet, srv.URL+"/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decode[map[string]any](t, resp)
	assert.Equal(t, "3.0.3", doc["openapi"])
}
