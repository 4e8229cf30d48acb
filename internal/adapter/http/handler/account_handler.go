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

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, entityID, id string, opts ...scope.Option) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	RecycleAccount(ctx context.Context, entityID, id string) error
	RestoreAccount(ctx context.Context, entityID, id string) error
	DestroyAccount(ctx context.Context, entityID, id string) error
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	bookkeepingUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(bookkeepingUC AccountService) *AccountHandler {
	return &AccountHandler{bookkeepingUC: bookkeepingUC}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.bookkeepingUC.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entityID := entityIDQuery(r)
	if id == "" || entityID == "" {
		writeError(w, http.StatusBadRequest, "missing account or entity ID", "")
		return
	}

	var opts []scope.Option
	if r.URL.Query().Get("include_deleted") == "true" {
		opts = append(opts, scope.IncludeDeleted())
	}

	account, err := h.bookkeepingUC.GetAccount(r.Context(), entityID, id, opts...)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists the entity's accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	entityID := entityIDQuery(r)
	if entityID == "" {
		writeError(w, http.StatusBadRequest, "missing entity ID", "")
		return
	}

	accounts, err := h.bookkeepingUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		EntityID:       entityID,
		Limit:          parseIntQuery(r, "limit", 20),
		Offset:         parseIntQuery(r, "offset", 0),
		IncludeDeleted: r.URL.Query().Get("include_deleted") == "true",
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Recycle soft deletes an account.
func (h *AccountHandler) Recycle(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.bookkeepingUC.RecycleAccount, "failed to recycle account")
}

// Restore reverses a soft delete.
func (h *AccountHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.bookkeepingUC.RestoreAccount, "failed to restore account")
}

// Destroy permanently retires an account.
func (h *AccountHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.bookkeepingUC.DestroyAccount, "failed to destroy account")
}

func (h *AccountHandler) lifecycle(w http.ResponseWriter, r *http.Request, op func(context.Context, string, string) error, message string) {
	id := chi.URLParam(r, "id")
	entityID := entityIDQuery(r)
	if id == "" || entityID == "" {
		writeError(w, http.StatusBadRequest, "missing account or entity ID", "")
		return
	}

	if err := op(r.Context(), entityID, id); err != nil {
		writeError(w, mapDomainError(err), message, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
