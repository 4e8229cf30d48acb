package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
	"github.com/iho/bookkeeper/internal/usecase"
)

func newBookkeepingUseCase(env *testEnv) *usecase.BookkeepingUseCase {
	return usecase.NewBookkeepingUseCase(
		env.factory,
		env.entities,
		env.accounts,
		env.taxes,
		env.transactions,
		env.idGen,
		zerolog.Nop(),
	)
}

func TestBookkeepingUseCase_CreateEntity(t *testing.T) {
	env := newTestEnv()
	uc := newBookkeepingUseCase(env)

	entity, err := uc.CreateEntity(context.Background(), usecase.CreateEntityInput{
		Name:     "Acme Traders",
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entity.ID == "" {
		t.Fatal("entity must receive an id")
	}
	if entity.ReportingPeriod == nil {
		t.Fatal("a new entity must carry its first reporting period")
	}
	if entity.ReportingPeriod.CalendarYear != 2026 {
		t.Errorf("calendar year = %d, want 2026", entity.ReportingPeriod.CalendarYear)
	}

	stored, err := env.entities.GetByID(context.Background(), entity.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Name != "Acme Traders" {
		t.Errorf("stored name = %q, want Acme Traders", stored.Name)
	}
}

func TestBookkeepingUseCase_CreateAccount(t *testing.T) {
	env := newTestEnv()
	env.seedEntity("ent-1")
	uc := newBookkeepingUseCase(env)

	account, err := uc.CreateAccount(context.Background(), usecase.CreateAccountInput{
		EntityID:    "ent-1",
		Name:        "Office Supplies",
		AccountType: domain.AccountTypeOperatingExpense,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.ID == "" {
		t.Error("account must receive an id")
	}
	if account.Currency != "USD" {
		t.Errorf("currency = %q, want the entity's USD", account.Currency)
	}
	if account.SessionIndex != 0 {
		t.Errorf("session index = %d, want 0", account.SessionIndex)
	}
}

func TestBookkeepingUseCase_CreateAccountUnknownEntity(t *testing.T) {
	env := newTestEnv()
	uc := newBookkeepingUseCase(env)

	_, err := uc.CreateAccount(context.Background(), usecase.CreateAccountInput{
		EntityID:    "ent-missing",
		Name:        "Orphan",
		AccountType: domain.AccountTypeBank,
	})
	if !errors.Is(err, domain.ErrEntityNotFound) {
		t.Fatalf("expected ErrEntityNotFound, got %v", err)
	}
}

func TestBookkeepingUseCase_AccountLifecycle(t *testing.T) {
	env := newTestEnv()
	env.seedEntity("ent-1")
	uc := newBookkeepingUseCase(env)
	ctx := context.Background()

	account, err := uc.CreateAccount(ctx, usecase.CreateAccountInput{
		EntityID:    "ent-1",
		Name:        "Old Bank",
		AccountType: domain.AccountTypeBank,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := uc.RecycleAccount(ctx, "ent-1", account.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Recycled accounts disappear from default reads but remain visible
	// when the soft delete filter is suppressed.
	if _, err := uc.GetAccount(ctx, "ent-1", account.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound after recycle, got %v", err)
	}
	if _, err := uc.GetAccount(ctx, "ent-1", account.ID, scope.IncludeDeleted()); err != nil {
		t.Fatalf("include deleted read must see the recycled account, got %v", err)
	}

	if err := uc.RestoreAccount(ctx, "ent-1", account.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := uc.GetAccount(ctx, "ent-1", account.ID); err != nil {
		t.Fatalf("restored account must be readable, got %v", err)
	}

	if err := uc.DestroyAccount(ctx, "ent-1", account.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Destroyed accounts never come back.
	if err := uc.RestoreAccount(ctx, "ent-1", account.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound after destroy, got %v", err)
	}
}

func TestBookkeepingUseCase_ListAccounts(t *testing.T) {
	env := newTestEnv()
	env.seedEntity("ent-1")
	env.seedEntity("ent-2")
	uc := newBookkeepingUseCase(env)
	ctx := context.Background()

	for _, name := range []string{"Alpha", "Beta"} {
		if _, err := uc.CreateAccount(ctx, usecase.CreateAccountInput{
			EntityID: "ent-1", Name: name, AccountType: domain.AccountTypeCurrentAsset,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := uc.CreateAccount(ctx, usecase.CreateAccountInput{
		EntityID: "ent-2", Name: "Foreign", AccountType: domain.AccountTypeCurrentAsset,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	accounts, err := uc.ListAccounts(ctx, usecase.ListAccountsInput{EntityID: "ent-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	for _, account := range accounts {
		if account.EntityID != "ent-1" {
			t.Errorf("listing leaked account %s of entity %s", account.ID, account.EntityID)
		}
	}
}

func TestBookkeepingUseCase_CreateTax(t *testing.T) {
	env := newTestEnv()
	env.seedEntity("ent-1")
	env.accounts.Seed(&domain.Account{
		ID: "acc-vat", EntityID: "ent-1", Name: "VAT Control",
		Currency: "USD", AccountType: domain.AccountTypeControl,
	})
	env.accounts.Seed(&domain.Account{
		ID: "acc-bank", EntityID: "ent-1", Name: "Bank",
		Currency: "USD", AccountType: domain.AccountTypeBank,
	})
	uc := newBookkeepingUseCase(env)
	ctx := context.Background()

	tax, err := uc.CreateTax(ctx, usecase.CreateTaxInput{
		EntityID:  "ent-1",
		Name:      "VAT",
		Code:      "VAT20",
		AccountID: "acc-vat",
		Rate:      decimal.NewFromInt(20),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tax.ID == "" {
		t.Error("tax must receive an id")
	}

	_, err = uc.CreateTax(ctx, usecase.CreateTaxInput{
		EntityID:  "ent-1",
		Name:      "Broken",
		AccountID: "acc-bank",
		Rate:      decimal.NewFromInt(5),
	})
	var taxErr *domain.InvalidTaxAccountError
	if !errors.As(err, &taxErr) {
		t.Fatalf("expected InvalidTaxAccountError, got %v", err)
	}
}

func TestBookkeepingUseCase_CreateTransaction(t *testing.T) {
	env := newTestEnv()
	env.seedEntity("ent-1")
	env.accounts.Seed(&domain.Account{
		ID: "acc-bank", EntityID: "ent-1", Name: "Bank",
		Currency: "USD", AccountType: domain.AccountTypeBank,
	})
	env.accounts.Seed(&domain.Account{
		ID: "acc-exp", EntityID: "ent-1", Name: "Supplies",
		Currency: "USD", AccountType: domain.AccountTypeOperatingExpense,
	})
	uc := newBookkeepingUseCase(env)

	transaction, err := uc.CreateTransaction(context.Background(), usecase.CreateTransactionInput{
		EntityID:        "ent-1",
		TransactionType: domain.TransactionTypeCashPurchase,
		MainAccountID:   "acc-bank",
		Narration:       "office refill",
		LineItems: []usecase.LineItemInput{
			{AccountID: "acc-exp", Amount: decimal.NewFromInt(40)},
			{AccountID: "acc-exp", Amount: decimal.NewFromInt(60)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if transaction.ID == "" {
		t.Fatal("transaction must receive an id")
	}
	if len(transaction.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(transaction.LineItems))
	}
	for i, item := range transaction.LineItems {
		if item.ID == "" {
			t.Errorf("line item %d missing an id", i)
		}
		if item.TransactionID != transaction.ID {
			t.Errorf("line item %d carries transaction %q, want %q", i, item.TransactionID, transaction.ID)
		}
	}
	if transaction.Posted {
		t.Error("a created transaction must start unposted")
	}
}

func TestBookkeepingUseCase_CreateTransactionBadLineAccount(t *testing.T) {
	env := newTestEnv()
	env.seedEntity("ent-1")
	env.accounts.Seed(&domain.Account{
		ID: "acc-bank", EntityID: "ent-1", Name: "Bank",
		Currency: "USD", AccountType: domain.AccountTypeBank,
	})
	uc := newBookkeepingUseCase(env)

	_, err := uc.CreateTransaction(context.Background(), usecase.CreateTransactionInput{
		EntityID:        "ent-1",
		TransactionType: domain.TransactionTypeCashSale,
		MainAccountID:   "acc-bank",
		LineItems: []usecase.LineItemInput{
			{AccountID: "acc-bank", Amount: decimal.NewFromInt(10)},
		},
	})

	var itemErr *domain.InvalidLineItemAccountError
	if !errors.As(err, &itemErr) {
		t.Fatalf("expected InvalidLineItemAccountError, got %v", err)
	}
	if env.txManager.Begins != 0 {
		t.Errorf("a rejected attach must not open a storage transaction, got %d", env.txManager.Begins)
	}
}

func TestBookkeepingUseCase_AttachLineItem(t *testing.T) {
	env := newTestEnv()
	env.seedEntity("ent-1")
	env.accounts.Seed(&domain.Account{
		ID: "acc-bank", EntityID: "ent-1", Name: "Bank",
		Currency: "USD", AccountType: domain.AccountTypeBank,
	})
	env.accounts.Seed(&domain.Account{
		ID: "acc-exp", EntityID: "ent-1", Name: "Supplies",
		Currency: "USD", AccountType: domain.AccountTypeOperatingExpense,
	})
	env.transactions.Seed(&domain.Transaction{
		ID:              "txn-1",
		EntityID:        "ent-1",
		TransactionType: domain.TransactionTypeJournalEntry,
		MainAccountID:   "acc-bank",
	})
	uc := newBookkeepingUseCase(env)

	item, err := uc.AttachLineItem(context.Background(), usecase.AttachLineItemInput{
		EntityID:      "ent-1",
		TransactionID: "txn-1",
		AccountID:     "acc-exp",
		Amount:        decimal.NewFromInt(25),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.ID == "" {
		t.Error("line item must receive an id")
	}
	if item.TransactionID != "txn-1" {
		t.Errorf("line item carries transaction %q, want txn-1", item.TransactionID)
	}
}

func TestBookkeepingUseCase_AttachLineItemMissingMainAccount(t *testing.T) {
	env := newTestEnv()
	env.seedEntity("ent-1")
	env.accounts.Seed(&domain.Account{
		ID: "acc-exp", EntityID: "ent-1", Name: "Supplies",
		Currency: "USD", AccountType: domain.AccountTypeOperatingExpense,
	})
	env.transactions.Seed(&domain.Transaction{
		ID:              "txn-1",
		EntityID:        "ent-1",
		TransactionType: domain.TransactionTypeJournalEntry,
	})
	uc := newBookkeepingUseCase(env)

	_, err := uc.AttachLineItem(context.Background(), usecase.AttachLineItemInput{
		EntityID:      "ent-1",
		TransactionID: "txn-1",
		AccountID:     "acc-exp",
		Amount:        decimal.NewFromInt(25),
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("a transaction with no main account must not flush, got %v", err)
	}
}

func TestBookkeepingUseCase_GetTransactionScoped(t *testing.T) {
	env := newTestEnv()
	env.seedEntity("ent-1")
	env.seedEntity("ent-2")
	env.transactions.Seed(&domain.Transaction{
		ID:              "txn-1",
		EntityID:        "ent-1",
		TransactionType: domain.TransactionTypeJournalEntry,
	})
	uc := newBookkeepingUseCase(env)

	if _, err := uc.GetTransaction(context.Background(), "ent-1", "txn-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := uc.GetTransaction(context.Background(), "ent-2", "txn-1")
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("another tenant must not see the transaction, got %v", err)
	}
}
