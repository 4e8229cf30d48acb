package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
	"github.com/iho/bookkeeper/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, entityID, id string) (*domain.Transaction, error)
	AttachLineItem(ctx context.Context, input usecase.AttachLineItemInput) (*domain.LineItem, error)
	SessionForEntity(ctx context.Context, entityID string, opts ...scope.Option) (*usecase.Session, error)
}

// PostingService defines the posting behavior needed by TransactionHandler.
type PostingService interface {
	Post(ctx context.Context, sess *usecase.Session, transaction *domain.Transaction) error
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	bookkeepingUC TransactionService
	postingUC     PostingService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(bookkeepingUC TransactionService, postingUC PostingService) *TransactionHandler {
	return &TransactionHandler{
		bookkeepingUC: bookkeepingUC,
		postingUC:     postingUC,
	}
}

// Create creates a new unposted transaction with its line items.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, err := h.bookkeepingUC.CreateTransaction(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(transaction))
}

// Get retrieves a transaction with its line items.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entityID := entityIDQuery(r)
	if id == "" || entityID == "" {
		writeError(w, http.StatusBadRequest, "missing transaction or entity ID", "")
		return
	}

	transaction, err := h.bookkeepingUC.GetTransaction(r.Context(), entityID, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(transaction))
}

// AttachLineItem adds a line item to an existing unposted transaction.
func (h *TransactionHandler) AttachLineItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.AttachLineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	item, err := h.bookkeepingUC.AttachLineItem(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to attach line item", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.LineItemFromDomain(item))
}

// Post posts a transaction to the ledger.
func (h *TransactionHandler) Post(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.PostTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.EntityID == "" {
		writeError(w, http.StatusBadRequest, "missing entity ID", "")
		return
	}

	sess, err := h.bookkeepingUC.SessionForEntity(r.Context(), req.EntityID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post transaction", err.Error())
		return
	}

	transaction, err := h.bookkeepingUC.GetTransaction(r.Context(), req.EntityID, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post transaction", err.Error())
		return
	}

	if err := h.postingUC.Post(r.Context(), sess, transaction); err != nil {
		writeError(w, mapDomainError(err), "failed to post transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(transaction))
}
