package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
	"github.com/iho/bookkeeper/internal/usecase"
	"github.com/iho/bookkeeper/internal/usecase/mocks"
)

// testEnv bundles a session factory with the mocks behind it.
type testEnv struct {
	factory      *usecase.SessionFactory
	txManager    *mocks.MockTxManager
	entities     *mocks.MockEntityRepository
	periods      *mocks.MockReportingPeriodRepository
	accounts     *mocks.MockAccountRepository
	taxes        *mocks.MockTaxRepository
	lineItems    *mocks.MockLineItemRepository
	transactions *mocks.MockTransactionRepository
	idGen        *mocks.MockIDGenerator
	now          time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		txManager:    mocks.NewMockTxManager(),
		entities:     mocks.NewMockEntityRepository(),
		periods:      mocks.NewMockReportingPeriodRepository(),
		accounts:     mocks.NewMockAccountRepository(),
		taxes:        mocks.NewMockTaxRepository(),
		lineItems:    mocks.NewMockLineItemRepository(),
		transactions: mocks.NewMockTransactionRepository(),
		idGen:        mocks.NewMockIDGenerator(),
		now:          time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	env.factory = usecase.NewSessionFactory(usecase.SessionFactoryConfig{
		TxManager:    env.txManager,
		Entities:     env.entities,
		Periods:      env.periods,
		Accounts:     env.accounts,
		Taxes:        env.taxes,
		LineItems:    env.lineItems,
		Transactions: env.transactions,
		IDGen:        env.idGen,
		Logger:       zerolog.Nop(),
		Now:          func() time.Time { return env.now },
	})

	return env
}

func (env *testEnv) seedEntity(id string) *domain.Entity {
	entity := &domain.Entity{ID: id, Name: "Test Co", Currency: "USD"}
	env.entities.Seed(entity)
	return entity
}

func TestSession_LazyBind(t *testing.T) {
	env := newTestEnv()
	env.seedEntity("ent-1")

	sess := env.factory.NewSession()
	if sess.Entity() != nil {
		t.Fatal("a fresh session must be unbound")
	}

	account := &domain.Account{
		EntityID:    "ent-1",
		Name:        "Office Supplies",
		Currency:    "USD",
		AccountType: domain.AccountTypeOperatingExpense,
	}

	if err := sess.Add(context.Background(), account); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sess.EntityID() != "ent-1" {
		t.Errorf("session bound to %q, want ent-1", sess.EntityID())
	}

	period := sess.ReportingPeriod()
	if period == nil {
		t.Fatal("binding must resolve the reporting period")
	}
	if period.CalendarYear != 2026 {
		t.Errorf("calendar year = %d, want 2026", period.CalendarYear)
	}
	if period.PeriodCount != 1 {
		t.Errorf("period count = %d, want 1", period.PeriodCount)
	}
}

func TestSession_AddScopedRecordWithoutEntity(t *testing.T) {
	env := newTestEnv()

	sess := env.factory.NewSession()
	account := &domain.Account{
		Name:        "Orphan",
		Currency:    "USD",
		AccountType: domain.AccountTypeBank,
	}

	err := sess.Add(context.Background(), account)
	if !errors.Is(err, domain.ErrMissingEntity) {
		t.Fatalf("expected ErrMissingEntity, got %v", err)
	}
}

func TestSession_RebindDifferentEntity(t *testing.T) {
	env := newTestEnv()
	entity := env.seedEntity("ent-1")
	env.seedEntity("ent-2")

	sess := env.factory.NewSession()
	if err := sess.Bind(context.Background(), entity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := sess.Add(context.Background(), &domain.Account{
		EntityID:    "ent-2",
		Name:        "Foreign",
		Currency:    "USD",
		AccountType: domain.AccountTypeBank,
	})
	if !errors.Is(err, usecase.ErrSessionBound) {
		t.Fatalf("expected ErrSessionBound, got %v", err)
	}
}

func TestSession_RebindSameEntityIsNoOp(t *testing.T) {
	env := newTestEnv()
	entity := env.seedEntity("ent-1")

	sess := env.factory.NewSession()
	if err := sess.Bind(context.Background(), entity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sess.Bind(context.Background(), entity); err != nil {
		t.Fatalf("rebinding the same entity: %v", err)
	}
}

func TestSession_SessionIndex(t *testing.T) {
	env := newTestEnv()
	env.seedEntity("ent-1")
	ctx := context.Background()

	sess := env.factory.NewSession()

	first := &domain.Account{EntityID: "ent-1", Name: "A", Currency: "USD", AccountType: domain.AccountTypeBank}
	second := &domain.Account{EntityID: "ent-1", Name: "B", Currency: "USD", AccountType: domain.AccountTypeBank}
	other := &domain.Account{EntityID: "ent-1", Name: "C", Currency: "USD", AccountType: domain.AccountTypeControl}

	for _, account := range []*domain.Account{first, second, other} {
		if err := sess.Add(ctx, account); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if first.SessionIndex != 0 || second.SessionIndex != 1 {
		t.Errorf("same-typed accounts indexed %d, %d; want 0, 1", first.SessionIndex, second.SessionIndex)
	}
	if other.SessionIndex != 0 {
		t.Errorf("differently typed account indexed %d, want 0", other.SessionIndex)
	}

	firstTxn := &domain.Transaction{EntityID: "ent-1", TransactionType: domain.TransactionTypeJournalEntry}
	secondTxn := &domain.Transaction{EntityID: "ent-1", TransactionType: domain.TransactionTypeJournalEntry}
	for _, transaction := range []*domain.Transaction{firstTxn, secondTxn} {
		if err := sess.Add(ctx, transaction); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if firstTxn.SessionIndex != 0 || secondTxn.SessionIndex != 1 {
		t.Errorf("transactions indexed %d, %d; want 0, 1", firstTxn.SessionIndex, secondTxn.SessionIndex)
	}
}

func TestSession_SessionIndexNotRecomputedForPersisted(t *testing.T) {
	env := newTestEnv()
	env.seedEntity("ent-1")

	sess := env.factory.NewSession()
	persisted := &domain.Account{
		ID:           "acc-1",
		EntityID:     "ent-1",
		Name:         "Existing",
		Currency:     "USD",
		AccountType:  domain.AccountTypeBank,
		SessionIndex: 7,
	}

	if err := sess.Add(context.Background(), persisted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if persisted.SessionIndex != 7 {
		t.Errorf("SessionIndex = %d, want the original 7", persisted.SessionIndex)
	}
}

func TestSession_FlushAbortsOnValidationFailure(t *testing.T) {
	env := newTestEnv()
	env.seedEntity("ent-1")
	ctx := context.Background()

	sess := env.factory.NewSession()

	valid := &domain.Account{EntityID: "ent-1", Name: "Good", Currency: "USD", AccountType: domain.AccountTypeBank}
	invalid := &domain.Account{EntityID: "ent-1", Name: "", Currency: "USD", AccountType: domain.AccountTypeBank}

	if err := sess.Add(ctx, valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sess.Add(ctx, invalid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := sess.Flush(ctx)
	if !errors.Is(err, domain.ErrInvalidAccountName) {
		t.Fatalf("expected ErrInvalidAccountName, got %v", err)
	}

	if env.txManager.Begins != 0 {
		t.Errorf("a failed validation gate must not open a storage transaction, got %d", env.txManager.Begins)
	}
	if valid.ID != "" {
		t.Error("no record may receive an id when the flush aborts")
	}
}

func TestSession_FlushWritesInReferentialOrder(t *testing.T) {
	env := newTestEnv()
	env.seedEntity("ent-1")
	env.accounts.Seed(&domain.Account{
		ID: "acc-exp", EntityID: "ent-1", Name: "Expenses",
		Currency: "USD", AccountType: domain.AccountTypeOperatingExpense,
	})
	ctx := context.Background()

	var order []string
	env.transactions.CreateTxFunc = func(_ context.Context, _ usecase.Transaction, transaction *domain.Transaction) error {
		order = append(order, "transaction")
		env.transactions.Seed(transaction)
		return nil
	}
	env.lineItems.CreateTxFunc = func(_ context.Context, _ usecase.Transaction, item *domain.LineItem) error {
		order = append(order, "line_item")
		return nil
	}

	sess := env.factory.NewSession()

	transaction := &domain.Transaction{
		EntityID:        "ent-1",
		TransactionType: domain.TransactionTypeJournalEntry,
		MainAccountID:   "acc-exp",
	}
	item := &domain.LineItem{
		EntityID:  "ent-1",
		AccountID: "acc-exp",
		Amount:    decimal.NewFromInt(10),
	}

	// Add the line item first to show the flush reorders by reference.
	if err := sess.Add(ctx, item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sess.Add(ctx, transaction); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sess.AttachLineItem(ctx, transaction, item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := sess.Flush(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(order) != 2 || order[0] != "transaction" || order[1] != "line_item" {
		t.Errorf("write order = %v, want [transaction line_item]", order)
	}
	if transaction.ID == "" || item.ID == "" {
		t.Error("flushed records must receive ids")
	}
	if item.TransactionID != transaction.ID {
		t.Errorf("line item carries transaction %q, want %q", item.TransactionID, transaction.ID)
	}

	if len(env.txManager.Begun) != 1 || !env.txManager.Begun[0].Committed {
		t.Error("the flush must commit exactly one storage transaction")
	}
}

func TestSession_FlushEmptyIsNoOp(t *testing.T) {
	env := newTestEnv()

	sess := env.factory.NewSession()
	if err := sess.Flush(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.txManager.Begins != 0 {
		t.Errorf("an empty flush must not open a storage transaction, got %d", env.txManager.Begins)
	}
}

func TestSession_AttachLineItemScopedLookup(t *testing.T) {
	env := newTestEnv()
	entity := env.seedEntity("ent-1")
	env.seedEntity("ent-2")
	env.accounts.Seed(&domain.Account{
		ID: "acc-foreign", EntityID: "ent-2", Name: "Foreign",
		Currency: "USD", AccountType: domain.AccountTypeOperatingExpense,
	})
	ctx := context.Background()

	sess := env.factory.NewSession()
	if err := sess.Bind(ctx, entity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	transaction := &domain.Transaction{
		ID:              "txn-1",
		EntityID:        "ent-1",
		TransactionType: domain.TransactionTypeJournalEntry,
	}
	item := &domain.LineItem{EntityID: "ent-1", AccountID: "acc-foreign", Amount: decimal.NewFromInt(5)}

	err := sess.AttachLineItem(ctx, transaction, item)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("another tenant's account must be invisible, got %v", err)
	}
}

func TestSession_ReportingPeriodReused(t *testing.T) {
	env := newTestEnv()
	entity := env.seedEntity("ent-1")
	ctx := context.Background()

	first := env.factory.NewSession()
	if err := first.Bind(ctx, entity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := env.factory.NewSession()
	if err := second.Bind(ctx, entity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ReportingPeriod().ID != second.ReportingPeriod().ID {
		t.Error("the same entity and year must resolve to one reporting period")
	}
	if second.ReportingPeriod().PeriodCount != 1 {
		t.Errorf("period count = %d, want 1", second.ReportingPeriod().PeriodCount)
	}
}

func TestSession_Reset(t *testing.T) {
	env := newTestEnv()
	entity := env.seedEntity("ent-1")
	ctx := context.Background()

	sess := env.factory.NewSession()
	if err := sess.Bind(ctx, entity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sess.Reset()
	if sess.Entity() != nil || sess.ReportingPeriod() != nil {
		t.Error("reset must unbind the session")
	}
}

func TestSession_ScopeOptionPrecedence(t *testing.T) {
	env := newTestEnv()

	sess := env.factory.NewSession(scope.IncludeDeleted())
	merged := sess.ScopeOptions()
	if !merged.IncludeDeleted {
		t.Error("session options must carry the per-session default")
	}

	merged = sess.ScopeOptions(scope.IgnoreIsolation())
	if !merged.IncludeDeleted || !merged.IgnoreIsolation {
		t.Error("per-call options must merge over the session defaults")
	}
}
