// Package httpapi - HTTP API стойки оформления заказов поверх chi.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
	"github.com/vladislavdragonenkov/messeorder/internal/session"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultMaxBodyBytes   = 1 << 20
	defaultOrdersLimit    = 20
	maxOrdersLimit        = 200

	operationName = "messeorder-api"
)

// API обслуживает сессии оформления и архив заказов.
type API struct {
	registry       *session.Registry
	archive        domain.OrderArchive
	logger         *log.Entry
	requestTimeout time.Duration
	maxBodyBytes   int64
}

// Option настраивает API.
type Option func(*API)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithArchive включает чтение переданных заказов (/orders).
func WithArchive(archive domain.OrderArchive) Option {
	return func(a *API) {
		a.archive = archive
	}
}

// WithRequestTimeout задаёт таймаут обработки запроса.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(a *API) {
		if timeout > 0 {
			a.requestTimeout = timeout
		}
	}
}

// New создаёт API.
func New(registry *session.Registry, opts ...Option) *API {
	a := &API{
		registry:       registry,
		logger:         log.WithField("component", "http-api"),
		requestTimeout: defaultRequestTimeout,
		maxBodyBytes:   defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler возвращает инструментированный роутер.
func (a *API) Handler() http.Handler {
	return otelhttp.NewHandler(a.Router(), operationName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// Router собирает маршруты /api/v1.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(a.requestTimeout))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "Seite nicht gefunden.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "Methode nicht erlaubt.")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", a.createSession)
		r.Route("/sessions/{sid}", func(r chi.Router) {
			r.Use(a.sessionContext)

			r.Get("/", a.getSession)
			r.Delete("/", a.closeSession)

			r.Get("/customers", a.searchCustomers)
			r.Get("/customers.html", a.searchCustomersHTML)
			r.Post("/customers", a.createCustomer)
			r.Post("/customer", a.selectCustomer)
			r.Delete("/customer", a.clearCustomer)

			r.Get("/articles", a.searchArticles)
			r.Get("/articles.html", a.searchArticlesHTML)
			r.Post("/cart/items", a.addArticle)
			r.Patch("/cart/items/{lineID}", a.updateQuantity)
			r.Delete("/cart/items/{lineID}", a.removeLine)
			r.Delete("/cart", a.clearCart)
			r.Get("/cart.html", a.cartHTML)

			r.Post("/order", a.finalizeOrder)
			r.Delete("/order", a.reopenOrder)
			r.Post("/order/complete", a.completeOrder)
			r.Get("/order.html", a.orderHTML)
			r.Post("/reset", a.startNewOrder)

			r.Get("/notices", a.listNotices)
			r.Delete("/notices/{nid}", a.dismissNotice)
		})

		r.Get("/orders", a.listOrders)
		r.Get("/orders/{orderID}", a.getOrder)
	})

	return r
}
