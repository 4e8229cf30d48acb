package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
	"github.com/iho/bookkeeper/internal/usecase"
)

const accountColumns = `id, entity_id, name, currency, account_type, session_index,
	deleted_at, destroyed_at, created_at, updated_at`

var accountTable = scope.Table{Recyclable: true, Isolated: true}

// AccountRepository implements usecase.AccountRepository. Every read is
// rewritten through the session's isolation filter.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// CreateTx inserts a new account.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, entity_id, name, currency, account_type, session_index, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := txQuerier(tx).Exec(ctx, query,
		account.ID,
		account.EntityID,
		account.Name,
		account.Currency,
		string(account.AccountType),
		account.SessionIndex,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)

	return err
}

// GetByID retrieves an account within the session's scope.
func (r *AccountRepository) GetByID(ctx context.Context, sess *usecase.Session, id string, opts ...scope.Option) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	cond, args, err := scope.Conditions(accountTable, sess.ScopeOptions(opts...), sess.EntityID(), []any{id})
	if err != nil {
		return nil, err
	}

	account, err := scanAccount(r.pool.QueryRow(ctx, query+cond, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

// List lists accounts within the session's scope, in creation order.
func (r *AccountRepository) List(ctx context.Context, sess *usecase.Session, limit, offset int, opts ...scope.Option) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE 1=1`

	cond, args, err := scope.Conditions(accountTable, sess.ScopeOptions(opts...), sess.EntityID(), nil)
	if err != nil {
		return nil, err
	}

	args = append(args, limit, offset)
	query += cond + ` ORDER BY id LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// Recycle soft deletes an account.
func (r *AccountRepository) Recycle(ctx context.Context, sess *usecase.Session, id string, at time.Time) error {
	if sess.EntityID() == "" {
		return scope.ErrNoEntity
	}

	query := `
		UPDATE accounts SET deleted_at = $3, updated_at = $3
		WHERE id = $1 AND entity_id = $2 AND deleted_at IS NULL AND destroyed_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, id, sess.EntityID(), timeToPgTimestamptz(at))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// Restore clears an account's soft delete.
func (r *AccountRepository) Restore(ctx context.Context, sess *usecase.Session, id string) error {
	if sess.EntityID() == "" {
		return scope.ErrNoEntity
	}

	query := `
		UPDATE accounts SET deleted_at = NULL, updated_at = NOW()
		WHERE id = $1 AND entity_id = $2 AND deleted_at IS NOT NULL AND destroyed_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, id, sess.EntityID())
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// Destroy permanently removes an account from all reads.
func (r *AccountRepository) Destroy(ctx context.Context, sess *usecase.Session, id string, at time.Time) error {
	if sess.EntityID() == "" {
		return scope.ErrNoEntity
	}

	query := `
		UPDATE accounts
		SET destroyed_at = $3, deleted_at = COALESCE(deleted_at, $3), updated_at = $3
		WHERE id = $1 AND entity_id = $2 AND destroyed_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, id, sess.EntityID(), timeToPgTimestamptz(at))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	account := &domain.Account{}

	var accountType string
	var deletedAt, destroyedAt, createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&account.ID,
		&account.EntityID,
		&account.Name,
		&account.Currency,
		&accountType,
		&account.SessionIndex,
		&deletedAt,
		&destroyedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.AccountType = domain.AccountType(accountType)
	account.DeletedAt = pgTimestamptzToPtr(deletedAt)
	account.DestroyedAt = pgTimestamptzToPtr(destroyedAt)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time

	return account, nil
}
