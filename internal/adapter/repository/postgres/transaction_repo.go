package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
	"github.com/iho/bookkeeper/internal/usecase"
)

const transactionColumns = `id, entity_id, transaction_type, main_account_id, narration,
	transaction_date, session_index, posted, deleted_at, destroyed_at, created_at, updated_at`

var transactionTable = scope.Table{Recyclable: true, Isolated: true}

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool      *pgxpool.Pool
	lineItems *LineItemRepository
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{
		pool:      pool,
		lineItems: NewLineItemRepository(pool),
	}
}

// CreateTx inserts a new transaction. Line items are persisted separately
// and linked by the session.
func (r *TransactionRepository) CreateTx(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, entity_id, transaction_type, main_account_id, narration,
			transaction_date, session_index, posted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := txQuerier(tx).Exec(ctx, query,
		transaction.ID,
		transaction.EntityID,
		string(transaction.TransactionType),
		transaction.MainAccountID,
		transaction.Narration,
		timeToPgTimestamptz(transaction.TransactionDate),
		transaction.SessionIndex,
		transaction.Posted,
		timeToPgTimestamptz(transaction.CreatedAt),
		timeToPgTimestamptz(transaction.UpdatedAt),
	)

	return err
}

// GetByID retrieves a transaction and its line items within the session's
// scope.
func (r *TransactionRepository) GetByID(ctx context.Context, sess *usecase.Session, id string, opts ...scope.Option) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	cond, args, err := scope.Conditions(transactionTable, sess.ScopeOptions(opts...), sess.EntityID(), []any{id})
	if err != nil {
		return nil, err
	}

	transaction, err := scanTransaction(r.pool.QueryRow(ctx, query+cond, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	items, err := r.lineItems.GetByTransaction(ctx, sess, transaction.ID, opts...)
	if err != nil {
		return nil, err
	}
	transaction.LineItems = items

	return transaction, nil
}

// MarkPostedTx flips the posted flag exactly once. A transaction already
// posted, here or by a concurrent session, yields domain.ErrAlreadyPosted.
func (r *TransactionRepository) MarkPostedTx(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error {
	query := `UPDATE transactions SET posted = TRUE, updated_at = $2 WHERE id = $1 AND posted = FALSE`

	tag, err := txQuerier(tx).Exec(ctx, query, id, timeToPgTimestamptz(at))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := txQuerier(tx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}

		if exists {
			return domain.ErrAlreadyPosted
		}

		return domain.ErrTransactionNotFound
	}

	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	transaction := &domain.Transaction{}

	var transactionType string
	var transactionDate, deletedAt, destroyedAt, createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&transaction.ID,
		&transaction.EntityID,
		&transactionType,
		&transaction.MainAccountID,
		&transaction.Narration,
		&transactionDate,
		&transaction.SessionIndex,
		&transaction.Posted,
		&deletedAt,
		&destroyedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	transaction.TransactionType = domain.TransactionType(transactionType)
	transaction.TransactionDate = transactionDate.Time
	transaction.DeletedAt = pgTimestamptzToPtr(deletedAt)
	transaction.DestroyedAt = pgTimestamptzToPtr(destroyedAt)
	transaction.CreatedAt = createdAt.Time
	transaction.UpdatedAt = updatedAt.Time

	return transaction, nil
}
