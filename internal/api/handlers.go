/**
 * @description
 * This file contains the HTTP handler functions for the budget API.
 * Handlers parse path and body parameters, call one service method and shape
 * the success envelope. Every failure goes to the ErrorResponder.
 */
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chrystalio/budget-buddy-api/internal/app"
	"github.com/chrystalio/budget-buddy-api/internal/domain"
)

// ReadinessChecker probes the upstream collections.
type ReadinessChecker interface {
	Check(ctx context.Context) ([]domain.CollectionStatus, error)
}

// Handler holds the application services the handlers interact with.
type Handler struct {
	categories   *app.CategoryService
	accounts     *app.RecordService
	transactions *app.RecordService
	readiness    ReadinessChecker
	errors       *ErrorResponder
	environment  string
	now          func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(
	categories *app.CategoryService,
	accounts *app.RecordService,
	transactions *app.RecordService,
	readiness ReadinessChecker,
	errors *ErrorResponder,
	environment string,
) *Handler {
	return &Handler{
		categories:   categories,
		accounts:     accounts,
		transactions: transactions,
		readiness:    readiness,
		errors:       errors,
		environment:  environment,
		now:          time.Now,
	}
}

type healthResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}

// handleHealth reports liveness without touching Notion.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, healthResponse{
		Success:     true,
		Message:     "Budget Buddy API is running",
		Timestamp:   h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Environment: h.environment,
	})
}

// handleReady probes every configured collection.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.readiness.Check(r.Context())
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, statuses)
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.GetAllCategories(r.Context())
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, categories)
}

func (h *Handler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.GetCategoryByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, category)
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	input, err := decodeCategoryInput(w, r)
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}

	category, err := h.categories.CreateCategory(r.Context(), input)
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	respondWithData(w, http.StatusCreated, category)
}

// handleUpdateCategory serves both PUT and PATCH; only the name is editable.
func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	input, err := decodeCategoryInput(w, r)
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}

	category, err := h.categories.UpdateCategory(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, category)
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.DeleteCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errors.Respond(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, dataEnvelope{
		Success: true,
		Message: "Category deleted successfully",
		Data:    category,
	})
}

// recordHandlers serves the read-only routes of one record collection.
func (h *Handler) recordHandlers(svc *app.RecordService) (list, get http.HandlerFunc) {
	list = func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.GetAll(r.Context())
		if err != nil {
			h.errors.Respond(w, r, err)
			return
		}
		respondWithData(w, http.StatusOK, records)
	}
	get = func(w http.ResponseWriter, r *http.Request) {
		record, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.errors.Respond(w, r, err)
			return
		}
		respondWithData(w, http.StatusOK, record)
	}
	return list, get
}

// handleRouteNotFound answers unmatched routes, including unsupported methods
// on known paths.
func (h *Handler) handleRouteNotFound(w http.ResponseWriter, r *http.Request) {
	h.errors.Respond(w, r, domain.NewNotFoundError("Route "+r.Method+" "+r.URL.Path+" not found"))
}
