package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// EntityService defines the behavior needed by EntityHandler.
type EntityService interface {
	CreateEntity(ctx context.Context, input usecase.CreateEntityInput) (*domain.Entity, error)
	GetEntity(ctx context.Context, id string) (*domain.Entity, error)
}

// EntityHandler handles entity-related HTTP requests.
type EntityHandler struct {
	bookkeepingUC EntityService
}

// NewEntityHandler creates a new EntityHandler.
func NewEntityHandler(bookkeepingUC EntityService) *EntityHandler {
	return &EntityHandler{bookkeepingUC: bookkeepingUC}
}

// Create creates a new entity.
func (h *EntityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entity, err := h.bookkeepingUC.CreateEntity(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create entity", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntityFromDomain(entity))
}

// Get retrieves an entity by ID.
func (h *EntityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entity ID", "")
		return
	}

	entity, err := h.bookkeepingUC.GetEntity(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get entity", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntityFromDomain(entity))
}
