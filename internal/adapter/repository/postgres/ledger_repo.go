package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
	"github.com/iho/bookkeeper/internal/usecase"
)

const ledgerColumns = `id, entity_id, transaction_id, post_account_id, folio_account_id,
	amount, entry_type, hash, created_at`

var ledgerTable = scope.Table{Recyclable: false, Isolated: true}

// LedgerRepository implements usecase.LedgerRepository. Ledger rows are
// append only: CreateTx then SetHashTx within one transaction is the only
// write path, and rows are never recycled.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// CreateTx inserts a ledger row. The hash column is finalized afterwards
// with SetHashTx, inside the same storage transaction.
func (r *LedgerRepository) CreateTx(ctx context.Context, tx usecase.Transaction, entry *domain.Ledger) error {
	query := `
		INSERT INTO ledgers (id, entity_id, transaction_id, post_account_id, folio_account_id,
			amount, entry_type, hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := txQuerier(tx).Exec(ctx, query,
		entry.ID,
		entry.EntityID,
		entry.TransactionID,
		entry.PostAccountID,
		entry.FolioAccountID,
		decimalToNumeric(entry.Amount),
		string(entry.EntryType),
		entry.Hash,
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// SetHashTx writes the integrity hash back onto an inserted row.
func (r *LedgerRepository) SetHashTx(ctx context.Context, tx usecase.Transaction, id, hash string) error {
	query := `UPDATE ledgers SET hash = $2 WHERE id = $1`

	_, err := txQuerier(tx).Exec(ctx, query, id, hash)

	return err
}

// GetByTransaction returns a transaction's ledger rows in posting order.
func (r *LedgerRepository) GetByTransaction(ctx context.Context, sess *usecase.Session, transactionID string, opts ...scope.Option) ([]*domain.Ledger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledgers WHERE transaction_id = $1`

	cond, args, err := scope.Conditions(ledgerTable, sess.ScopeOptions(opts...), sess.EntityID(), []any{transactionID})
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query+cond+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.Ledger
	for rows.Next() {
		entry, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Totals returns the ledger-wide debit and credit sums.
func (r *LedgerRepository) Totals(ctx context.Context) (debits, credits decimal.Decimal, err error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'DEBIT'), 0),
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'CREDIT'), 0)
		FROM ledgers
	`

	var totalDebits, totalCredits pgtype.Numeric

	if err := r.pool.QueryRow(ctx, query).Scan(&totalDebits, &totalCredits); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(totalDebits), numericToDecimal(totalCredits), nil
}

func scanLedger(row pgx.Row) (*domain.Ledger, error) {
	entry := &domain.Ledger{}

	var entryType string
	var amount pgtype.Numeric
	var createdAt pgtype.Timestamptz

	err := row.Scan(
		&entry.ID,
		&entry.EntityID,
		&entry.TransactionID,
		&entry.PostAccountID,
		&entry.FolioAccountID,
		&amount,
		&entryType,
		&entry.Hash,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry.EntryType = domain.EntryType(entryType)
	entry.Amount = numericToDecimal(amount)
	entry.CreatedAt = createdAt.Time

	return entry, nil
}
