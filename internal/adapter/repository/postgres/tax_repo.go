package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
	"github.com/iho/bookkeeper/internal/usecase"
)

const taxColumns = `id, entity_id, name, code, account_id, rate,
	deleted_at, destroyed_at, created_at, updated_at`

var taxTable = scope.Table{Recyclable: true, Isolated: true}

// TaxRepository implements usecase.TaxRepository.
type TaxRepository struct {
	pool *pgxpool.Pool
}

// NewTaxRepository creates a new TaxRepository.
func NewTaxRepository(pool *pgxpool.Pool) *TaxRepository {
	return &TaxRepository{pool: pool}
}

// CreateTx inserts a new tax.
func (r *TaxRepository) CreateTx(ctx context.Context, tx usecase.Transaction, tax *domain.Tax) error {
	query := `
		INSERT INTO taxes (id, entity_id, name, code, account_id, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := txQuerier(tx).Exec(ctx, query,
		tax.ID,
		tax.EntityID,
		tax.Name,
		tax.Code,
		tax.AccountID,
		decimalToNumeric(tax.Rate),
		timeToPgTimestamptz(tax.CreatedAt),
		timeToPgTimestamptz(tax.UpdatedAt),
	)

	return err
}

// GetByID retrieves a tax within the session's scope.
func (r *TaxRepository) GetByID(ctx context.Context, sess *usecase.Session, id string, opts ...scope.Option) (*domain.Tax, error) {
	query := `SELECT ` + taxColumns + ` FROM taxes WHERE id = $1`

	cond, args, err := scope.Conditions(taxTable, sess.ScopeOptions(opts...), sess.EntityID(), []any{id})
	if err != nil {
		return nil, err
	}

	tax, err := scanTax(r.pool.QueryRow(ctx, query+cond, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaxNotFound
		}

		return nil, err
	}

	return tax, nil
}

// GetByIDs retrieves taxes by ids within the session's scope, keyed by id.
func (r *TaxRepository) GetByIDs(ctx context.Context, sess *usecase.Session, ids []string, opts ...scope.Option) (map[string]*domain.Tax, error) {
	query := `SELECT ` + taxColumns + ` FROM taxes WHERE id = ANY($1)`

	cond, args, err := scope.Conditions(taxTable, sess.ScopeOptions(opts...), sess.EntityID(), []any{ids})
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query+cond, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taxes := make(map[string]*domain.Tax, len(ids))
	for rows.Next() {
		tax, err := scanTax(rows)
		if err != nil {
			return nil, err
		}

		taxes[tax.ID] = tax
	}

	return taxes, rows.Err()
}

func scanTax(row pgx.Row) (*domain.Tax, error) {
	tax := &domain.Tax{}

	var rate pgtype.Numeric
	var deletedAt, destroyedAt, createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&tax.ID,
		&tax.EntityID,
		&tax.Name,
		&tax.Code,
		&tax.AccountID,
		&rate,
		&deletedAt,
		&destroyedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	tax.Rate = numericToDecimal(rate)
	tax.DeletedAt = pgTimestamptzToPtr(deletedAt)
	tax.DestroyedAt = pgTimestamptzToPtr(destroyedAt)
	tax.CreatedAt = createdAt.Time
	tax.UpdatedAt = updatedAt.Time

	return tax, nil
}
