package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
	"github.com/iho/bookkeeper/internal/usecase/mocks"
)

func seedLedgerRow(ledgers *mocks.MockLedgerRepository, id, transactionID string, amount int64, entryType domain.EntryType) *domain.Ledger {
	entry := &domain.Ledger{
		ID:             id,
		EntityID:       "ent-1",
		TransactionID:  transactionID,
		PostAccountID:  "acc-a",
		FolioAccountID: "acc-b",
		Amount:         decimal.NewFromInt(amount),
		EntryType:      entryType,
	}
	entry.Hash = entry.ComputeHash()
	ledgers.Entries = append(ledgers.Entries, entry)

	return entry
}

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	ledgers := mocks.NewMockLedgerRepository()
	seedLedgerRow(ledgers, "led-1", "txn-1", 100, domain.EntryTypeDebit)
	seedLedgerRow(ledgers, "led-2", "txn-1", 100, domain.EntryTypeCredit)

	uc := usecase.NewLedgerUseCase(ledgers)

	ok, err := uc.CheckConsistency(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("a balanced ledger must be consistent")
	}
}

func TestLedgerUseCase_CheckConsistencyUnbalanced(t *testing.T) {
	ledgers := mocks.NewMockLedgerRepository()
	seedLedgerRow(ledgers, "led-1", "txn-1", 100, domain.EntryTypeDebit)
	seedLedgerRow(ledgers, "led-2", "txn-1", 99, domain.EntryTypeCredit)

	uc := usecase.NewLedgerUseCase(ledgers)

	ok, err := uc.CheckConsistency(context.Background())
	if !errors.Is(err, usecase.ErrInconsistentLedger) {
		t.Fatalf("expected ErrInconsistentLedger, got %v", err)
	}
	if ok {
		t.Error("an unbalanced ledger must not report consistent")
	}
}

func TestLedgerUseCase_VerifyHashes(t *testing.T) {
	env := newTestEnv()
	entity := env.seedEntity("ent-1")

	ledgers := mocks.NewMockLedgerRepository()
	seedLedgerRow(ledgers, "led-1", "txn-1", 100, domain.EntryTypeDebit)
	tampered := seedLedgerRow(ledgers, "led-2", "txn-1", 100, domain.EntryTypeCredit)
	tampered.Amount = decimal.NewFromInt(250)

	sess := env.factory.NewSession()
	if err := sess.Bind(context.Background(), entity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uc := usecase.NewLedgerUseCase(ledgers)

	bad, err := uc.VerifyHashes(context.Background(), sess, "txn-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bad) != 1 || bad[0] != "led-2" {
		t.Errorf("tampered ids = %v, want [led-2]", bad)
	}
}
