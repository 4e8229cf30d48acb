package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
	"github.com/iho/bookkeeper/internal/usecase"
)

const lineItemColumns = `id, entity_id, transaction_id, account_id, tax_id, amount, narration,
	deleted_at, destroyed_at, created_at, updated_at`

var lineItemTable = scope.Table{Recyclable: true, Isolated: true}

// LineItemRepository implements usecase.LineItemRepository.
type LineItemRepository struct {
	pool *pgxpool.Pool
}

// NewLineItemRepository creates a new LineItemRepository.
func NewLineItemRepository(pool *pgxpool.Pool) *LineItemRepository {
	return &LineItemRepository{pool: pool}
}

// CreateTx inserts a new line item.
func (r *LineItemRepository) CreateTx(ctx context.Context, tx usecase.Transaction, item *domain.LineItem) error {
	query := `
		INSERT INTO line_items (id, entity_id, transaction_id, account_id, tax_id, amount, narration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := txQuerier(tx).Exec(ctx, query,
		item.ID,
		item.EntityID,
		textToPg(item.TransactionID),
		item.AccountID,
		textToPg(item.TaxID),
		decimalToNumeric(item.Amount),
		item.Narration,
		timeToPgTimestamptz(item.CreatedAt),
		timeToPgTimestamptz(item.UpdatedAt),
	)

	return err
}

// AttachTx links already persisted line items to a transaction.
func (r *LineItemRepository) AttachTx(ctx context.Context, tx usecase.Transaction, transactionID string, itemIDs []string) error {
	query := `UPDATE line_items SET transaction_id = $1, updated_at = NOW() WHERE id = ANY($2)`

	_, err := txQuerier(tx).Exec(ctx, query, transactionID, itemIDs)

	return err
}

// GetByTransaction returns a transaction's line items in attachment order.
func (r *LineItemRepository) GetByTransaction(ctx context.Context, sess *usecase.Session, transactionID string, opts ...scope.Option) ([]*domain.LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM line_items WHERE transaction_id = $1`

	cond, args, err := scope.Conditions(lineItemTable, sess.ScopeOptions(opts...), sess.EntityID(), []any{transactionID})
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query+cond+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.LineItem
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, rows.Err()
}

func scanLineItem(row pgx.Row) (*domain.LineItem, error) {
	item := &domain.LineItem{}

	var transactionID, taxID pgtype.Text
	var amount pgtype.Numeric
	var deletedAt, destroyedAt, createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&item.ID,
		&item.EntityID,
		&transactionID,
		&item.AccountID,
		&taxID,
		&amount,
		&item.Narration,
		&deletedAt,
		&destroyedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.TransactionID = pgToText(transactionID)
	item.TaxID = pgToText(taxID)
	item.Amount = numericToDecimal(amount)
	item.DeletedAt = pgTimestamptzToPtr(deletedAt)
	item.DestroyedAt = pgTimestamptzToPtr(destroyedAt)
	item.CreatedAt = createdAt.Time
	item.UpdatedAt = updatedAt.Time

	return item, nil
}
