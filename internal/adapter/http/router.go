package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/bookkeeper/internal/adapter/http/handler"
	"github.com/iho/bookkeeper/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	EntityHandler      *handler.EntityHandler
	AccountHandler     *handler.AccountHandler
	TaxHandler         *handler.TaxHandler
	TransactionHandler *handler.TransactionHandler
	LedgerHandler      *handler.LedgerHandler
	HealthHandler      *handler.HealthHandler
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.NewRecovery(cfg.Logger))

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Entities
		r.Route("/entities", func(r chi.Router) {
			r.Post("/", cfg.EntityHandler.Create)
			r.Get("/{id}", cfg.EntityHandler.Get)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Post("/{id}/recycle", cfg.AccountHandler.Recycle)
			r.Post("/{id}/restore", cfg.AccountHandler.Restore)
			r.Delete("/{id}", cfg.AccountHandler.Destroy)
		})

		// Taxes
		r.Route("/taxes", func(r chi.Router) {
			r.Post("/", cfg.TaxHandler.Create)
			r.Get("/{id}", cfg.TaxHandler.Get)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Post("/{id}/line-items", cfg.TransactionHandler.AttachLineItem)
			r.Post("/{id}/post", cfg.TransactionHandler.Post)
			r.Get("/{id}/ledgers", cfg.LedgerHandler.ListByTransaction)
			r.Get("/{id}/ledgers/verify", cfg.LedgerHandler.VerifyHashes)
		})

		// Ledger
		r.Get("/ledger/consistency", cfg.LedgerHandler.Consistency)
	})

	return r
}
