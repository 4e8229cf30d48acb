package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
)

// EntityRepository defines data access for entities. Entities are the one
// record kind the isolation filter never applies to.
type EntityRepository interface {
	CreateTx(ctx context.Context, tx Transaction, entity *domain.Entity) error
	GetByID(ctx context.Context, id string) (*domain.Entity, error)
}

// ReportingPeriodRepository defines data access for reporting periods.
type ReportingPeriodRepository interface {
	// GetOrCreate returns the entity's period for the calendar year,
	// creating it with the given id when absent.
	GetOrCreate(ctx context.Context, entityID string, calendarYear int, id string) (*domain.ReportingPeriod, error)
}

// AccountRepository defines data access for accounts. Read methods apply
// the session's isolation filter unless suppressed per call.
type AccountRepository interface {
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, sess *Session, id string, opts ...scope.Option) (*domain.Account, error)
	List(ctx context.Context, sess *Session, limit, offset int, opts ...scope.Option) ([]*domain.Account, error)
	Recycle(ctx context.Context, sess *Session, id string, at time.Time) error
	Restore(ctx context.Context, sess *Session, id string) error
	Destroy(ctx context.Context, sess *Session, id string, at time.Time) error
}

// TaxRepository defines data access for taxes.
type TaxRepository interface {
	CreateTx(ctx context.Context, tx Transaction, tax *domain.Tax) error
	GetByID(ctx context.Context, sess *Session, id string, opts ...scope.Option) (*domain.Tax, error)
	GetByIDs(ctx context.Context, sess *Session, ids []string, opts ...scope.Option) (map[string]*domain.Tax, error)
}

// LineItemRepository defines data access for line items.
type LineItemRepository interface {
	CreateTx(ctx context.Context, tx Transaction, item *domain.LineItem) error
	AttachTx(ctx context.Context, tx Transaction, transactionID string, itemIDs []string) error
	GetByTransaction(ctx context.Context, sess *Session, transactionID string, opts ...scope.Option) ([]*domain.LineItem, error)
}

// TransactionRepository defines data access for business transactions.
type TransactionRepository interface {
	CreateTx(ctx context.Context, tx Transaction, transaction *domain.Transaction) error
	GetByID(ctx context.Context, sess *Session, id string, opts ...scope.Option) (*domain.Transaction, error)
	// MarkPostedTx flips the posted flag exactly once; a second call for
	// the same transaction returns domain.ErrAlreadyPosted.
	MarkPostedTx(ctx context.Context, tx Transaction, id string, at time.Time) error
}

// LedgerRepository defines data access for ledger rows. CreateTx and
// SetHashTx form the post-insert-finalize extension point: a row is
// inserted, receives its durable identity, and has its hash written back
// in the same storage transaction.
type LedgerRepository interface {
	CreateTx(ctx context.Context, tx Transaction, entry *domain.Ledger) error
	SetHashTx(ctx context.Context, tx Transaction, id, hash string) error
	GetByTransaction(ctx context.Context, sess *Session, transactionID string, opts ...scope.Option) ([]*domain.Ledger, error)
	// Totals returns the ledger-wide debit and credit sums.
	Totals(ctx context.Context) (debits, credits decimal.Decimal, err error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Retrier retries an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
