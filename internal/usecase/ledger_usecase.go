package usecase

import (
	"context"
	"errors"

	"github.com/iho/bookkeeper/internal/domain"
)

// ErrInconsistentLedger is returned when the ledger is not balanced.
var ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgers LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgers LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{ledgers: ledgers}
}

// CheckConsistency verifies that total debits equal total credits across
// the whole ledger.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	debits, credits, err := uc.ledgers.Totals(ctx)
	if err != nil {
		return false, err
	}

	if !debits.Equal(credits) {
		return false, ErrInconsistentLedger
	}

	return true, nil
}

// LedgersByTransaction returns a transaction's ledger rows in posting
// order.
func (uc *LedgerUseCase) LedgersByTransaction(ctx context.Context, sess *Session, transactionID string) ([]*domain.Ledger, error) {
	return uc.ledgers.GetByTransaction(ctx, sess, transactionID)
}

// VerifyHashes recomputes every ledger row hash for a transaction from
// the stored immutable fields and reports the ids that fail to reproduce
// their persisted hash.
func (uc *LedgerUseCase) VerifyHashes(ctx context.Context, sess *Session, transactionID string) ([]string, error) {
	entries, err := uc.ledgers.GetByTransaction(ctx, sess, transactionID)
	if err != nil {
		return nil, err
	}

	var tampered []string
	for _, entry := range entries {
		if !entry.VerifyHash() {
			tampered = append(tampered, entry.ID)
		}
	}

	return tampered, nil
}
