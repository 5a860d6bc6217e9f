package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/order-lifecycle/internal/service/models/order"
	"github.com/corray333/order-lifecycle/internal/service/services/ordersvc"
	cancelorder "github.com/corray333/order-lifecycle/internal/transport/http/cancel_order"
	confirmorder "github.com/corray333/order-lifecycle/internal/transport/http/confirm_order"
	createorder "github.com/corray333/order-lifecycle/internal/transport/http/create_order"
	"github.com/corray333/order-lifecycle/internal/transport/http/docs"
	getorder "github.com/corray333/order-lifecycle/internal/transport/http/get_order"
	listorders "github.com/corray333/order-lifecycle/internal/transport/http/list_orders"
	"github.com/corray333/order-lifecycle/internal/transport/http/respond"
	"github.com/corray333/order-lifecycle/internal/transport/http/stats"
	updateamount "github.com/corray333/order-lifecycle/internal/transport/http/update_amount"
	"github.com/corray333/order-lifecycle/pkg/http/middleware/trace"
	"github.com/corray333/order-lifecycle/pkg/logger"
	"github.com/corray333/order-lifecycle/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type service interface {
	CreateOrder(ctx context.Context, email string, amount decimal.Decimal) (order.Order, error)
	ConfirmOrder(ctx context.Context, orderID uuid.UUID) error
	CancelOrder(ctx context.Context, orderID uuid.UUID) error
	UpdateOrderAmount(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	ListOrders(ctx context.Context, model order.QueryOrdersModel) ([]order.Order, error)
	Stats() ordersvc.Stats
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
	metrics *metrics.ServerMetrics
}

func NewHTTPTransport(service service, serverMetrics *metrics.ServerMetrics) *HTTPTransport {
	router := newRouter(serverMetrics)
	server := newServer(router)

	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
		metrics: serverMetrics,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Handler returns the router, used by tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Post("/", h.createOrder)
			r.Get("/stats", h.stats)
			r.Get("/{id}", h.getOrder)
			r.Delete("/{id}", h.cancelOrder)
			r.Post("/{id}/confirm", h.confirmOrder)
			r.Patch("/{id}/amount", h.updateAmount)
		})
	})

	h.router.Handle("/metrics", h.metrics.Handler())

	h.router.Get("/swagger/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.OpenAPI)
	})
	h.router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	h.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusNotFound, "not_found", "route not found")
	})
	h.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.service)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.service)
}

func (h *HTTPTransport) confirmOrder(w http.ResponseWriter, r *http.Request) {
	confirmorder.ConfirmOrder(w, r, h.service)
}

func (h *HTTPTransport) cancelOrder(w http.ResponseWriter, r *http.Request) {
	cancelorder.CancelOrder(w, r, h.service)
}

func (h *HTTPTransport) updateAmount(w http.ResponseWriter, r *http.Request) {
	updateamount.UpdateAmount(w, r, h.service)
}

func (h *HTTPTransport) stats(w http.ResponseWriter, r *http.Request) {
	stats.Stats(w, r, h.service)
}

func newRouter(serverMetrics *metrics.ServerMetrics) *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware("order-svc"))
	router.Use(serverMetrics.Middleware)
	router.Use(middleware.Recoverer)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	port := viper.GetString("server.http.port")
	if port == "" {
		port = "8080"
	}

	return &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}
}
