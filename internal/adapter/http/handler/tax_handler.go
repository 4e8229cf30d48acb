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

// TaxService defines the behavior needed by TaxHandler.
type TaxService interface {
	CreateTax(ctx context.Context, input usecase.CreateTaxInput) (*domain.Tax, error)
	GetTax(ctx context.Context, entityID, id string) (*domain.Tax, error)
}

// TaxHandler handles tax-related HTTP requests.
type TaxHandler struct {
	bookkeepingUC TaxService
}

// NewTaxHandler creates a new TaxHandler.
func NewTaxHandler(bookkeepingUC TaxService) *TaxHandler {
	return &TaxHandler{bookkeepingUC: bookkeepingUC}
}

// Create creates a new tax.
func (h *TaxHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTaxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tax, err := h.bookkeepingUC.CreateTax(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create tax", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TaxFromDomain(tax))
}

// Get retrieves a tax by ID.
func (h *TaxHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entityID := entityIDQuery(r)
	if id == "" || entityID == "" {
		writeError(w, http.StatusBadRequest, "missing tax or entity ID", "")
		return
	}

	tax, err := h.bookkeepingUC.GetTax(r.Context(), entityID, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get tax", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TaxFromDomain(tax))
}
