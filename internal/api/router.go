/**
 * @description
 * This file sets up the HTTP router for the budget API using the go-chi/chi router.
 * It applies middleware for request ids, logging, panic recovery and CORS, and
 * maps the routes to their handler functions.
 */
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the budget API routes.
func NewRouter(h *Handler, logger *slog.Logger, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(Recoverer(h.errors))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300, // Maximum value not ignored by any major browsers
	}))

	r.NotFound(h.handleRouteNotFound)
	r.MethodNotAllowed(h.handleRouteNotFound)

	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.handleListCategories)
			r.Post("/", h.handleCreateCategory)
			r.Get("/{id}", h.handleGetCategory)
			r.Put("/{id}", h.handleUpdateCategory)
			r.Patch("/{id}", h.handleUpdateCategory)
			r.Delete("/{id}", h.handleDeleteCategory)
		})

		listAccounts, getAccount := h.recordHandlers(h.accounts)
		r.Get("/accounts", listAccounts)
		r.Get("/accounts/{id}", getAccount)

		listTransactions, getTransaction := h.recordHandlers(h.transactions)
		r.Get("/transactions", listTransactions)
		r.Get("/transactions/{id}", getTransaction)
	})

	return r
}
