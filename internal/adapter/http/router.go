package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/makhzone/internal/adapter/http/handler"
	"github.com/iho/makhzone/internal/adapter/http/middleware"
	"github.com/iho/makhzone/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	SaleHandler      *handler.SaleHandler
	PurchaseHandler  *handler.PurchaseHandler
	PaymentHandler   *handler.PaymentHandler
	TraderHandler    *handler.TraderHandler
	ProductHandler   *handler.ProductHandler
	ExpenseHandler   *handler.ExpenseHandler
	DashboardHandler *handler.DashboardHandler
	HealthHandler    *handler.HealthHandler

	// Optional.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore).WithTTL(cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Route("/sales", func(r chi.Router) {
			r.Post("/", cfg.SaleHandler.Create)
			r.Get("/", cfg.SaleHandler.List)
			r.Get("/{id}", cfg.SaleHandler.Get)
			r.Put("/{id}", cfg.SaleHandler.Update)
			r.Delete("/{id}", cfg.SaleHandler.Delete)
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Post("/", cfg.PurchaseHandler.Create)
			r.Get("/", cfg.PurchaseHandler.List)
			r.Get("/{id}", cfg.PurchaseHandler.Get)
			r.Put("/{id}", cfg.PurchaseHandler.Update)
			r.Delete("/{id}", cfg.PurchaseHandler.Delete)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", cfg.PaymentHandler.Create)
			r.Get("/", cfg.PaymentHandler.List)
			r.Get("/{id}", cfg.PaymentHandler.Get)
			r.Put("/{id}", cfg.PaymentHandler.Update)
			r.Delete("/{id}", cfg.PaymentHandler.Delete)
		})

		r.Route("/traders", func(r chi.Router) {
			r.Post("/", cfg.TraderHandler.Create)
			r.Get("/", cfg.TraderHandler.List)
			r.Get("/{id}", cfg.TraderHandler.Get)
			r.Put("/{id}", cfg.TraderHandler.Update)
			r.Delete("/{id}", cfg.TraderHandler.Delete)
			r.Get("/{id}/balance", cfg.TraderHandler.Balance)
			r.Get("/{id}/reconciliation", cfg.TraderHandler.Reconcile)
			r.Get("/{id}/financials", cfg.TraderHandler.Financials)
			r.Get("/{id}/payments", cfg.PaymentHandler.ListByTrader)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", cfg.ProductHandler.Create)
			r.Get("/", cfg.ProductHandler.List)
			r.Get("/{id}", cfg.ProductHandler.Get)
			r.Put("/{id}", cfg.ProductHandler.Update)
			r.Delete("/{id}", cfg.ProductHandler.Delete)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", cfg.ExpenseHandler.Create)
			r.Get("/", cfg.ExpenseHandler.List)
			r.Get("/{id}", cfg.ExpenseHandler.Get)
			r.Put("/{id}", cfg.ExpenseHandler.Update)
			r.Delete("/{id}", cfg.ExpenseHandler.Delete)
		})

		r.Get("/dashboard/stats", cfg.DashboardHandler.Stats)
		r.Get("/reconciliation", cfg.TraderHandler.ReconcileAll)
	})

	return r
}
