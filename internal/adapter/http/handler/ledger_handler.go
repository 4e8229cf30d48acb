package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
	"github.com/iho/bookkeeper/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	CheckConsistency(ctx context.Context) (bool, error)
	LedgersByTransaction(ctx context.Context, sess *usecase.Session, transactionID string) ([]*domain.Ledger, error)
	VerifyHashes(ctx context.Context, sess *usecase.Session, transactionID string) ([]string, error)
}

// SessionService opens entity-bound sessions for scoped ledger reads.
type SessionService interface {
	SessionForEntity(ctx context.Context, entityID string, opts ...scope.Option) (*usecase.Session, error)
}

// LedgerHandler handles ledger-related HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
	sessions SessionService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService, sessions SessionService) *LedgerHandler {
	return &LedgerHandler{
		ledgerUC: ledgerUC,
		sessions: sessions,
	}
}

// ListByTransaction lists a transaction's ledger rows in posting order.
func (h *LedgerHandler) ListByTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entityID := entityIDQuery(r)
	if id == "" || entityID == "" {
		writeError(w, http.StatusBadRequest, "missing transaction or entity ID", "")
		return
	}

	sess, err := h.sessions.SessionForEntity(r.Context(), entityID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list ledgers", err.Error())
		return
	}

	ledgers, err := h.ledgerUC.LedgersByTransaction(r.Context(), sess, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list ledgers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgersFromDomain(ledgers))
}

// VerifyHashes recomputes each ledger row's hash and reports the ids of
// rows whose stored hash does not match.
func (h *LedgerHandler) VerifyHashes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entityID := entityIDQuery(r)
	if id == "" || entityID == "" {
		writeError(w, http.StatusBadRequest, "missing transaction or entity ID", "")
		return
	}

	sess, err := h.sessions.SessionForEntity(r.Context(), entityID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to verify ledger hashes", err.Error())
		return
	}

	tampered, err := h.ledgerUC.VerifyHashes(r.Context(), sess, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to verify ledger hashes", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    len(tampered) == 0,
		"tampered": tampered,
	})
}

// Consistency checks that ledger debits equal credits overall.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	consistent, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check ledger consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{Consistent: consistent})
}
