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

// EntityRepository implements usecase.EntityRepository. Entities are
// recyclable but never tenant filtered: an entity cannot self-filter.
type EntityRepository struct {
	pool *pgxpool.Pool
}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

// CreateTx inserts a new entity.
func (r *EntityRepository) CreateTx(ctx context.Context, tx usecase.Transaction, entity *domain.Entity) error {
	query := `
		INSERT INTO entities (id, name, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := txQuerier(tx).Exec(ctx, query,
		entity.ID,
		entity.Name,
		entity.Currency,
		timeToPgTimestamptz(entity.CreatedAt),
		timeToPgTimestamptz(entity.UpdatedAt),
	)

	return err
}

// GetByID retrieves an entity with its latest reporting period.
func (r *EntityRepository) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	query := `
		SELECT id, name, currency, deleted_at, destroyed_at, created_at, updated_at
		FROM entities
		WHERE id = $1
	`

	cond, args, err := scope.Conditions(scope.Table{Recyclable: true}, scope.Options{}, "", []any{id})
	if err != nil {
		return nil, err
	}

	entity := &domain.Entity{}

	var deletedAt, destroyedAt, createdAt, updatedAt pgtype.Timestamptz

	err = r.pool.QueryRow(ctx, query+cond, args...).Scan(
		&entity.ID,
		&entity.Name,
		&entity.Currency,
		&deletedAt,
		&destroyedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntityNotFound
		}

		return nil, err
	}

	entity.DeletedAt = pgTimestamptzToPtr(deletedAt)
	entity.DestroyedAt = pgTimestamptzToPtr(destroyedAt)
	entity.CreatedAt = createdAt.Time
	entity.UpdatedAt = updatedAt.Time

	period, err := r.latestPeriod(ctx, entity.ID)
	if err != nil {
		return nil, err
	}
	entity.ReportingPeriod = period

	return entity, nil
}

func (r *EntityRepository) latestPeriod(ctx context.Context, entityID string) (*domain.ReportingPeriod, error) {
	query := `
		SELECT id, entity_id, calendar_year, period_count, created_at
		FROM reporting_periods
		WHERE entity_id = $1 AND deleted_at IS NULL AND destroyed_at IS NULL
		ORDER BY calendar_year DESC
		LIMIT 1
	`

	period := &domain.ReportingPeriod{}

	var createdAt pgtype.Timestamptz

	err := r.pool.QueryRow(ctx, query, entityID).Scan(
		&period.ID,
		&period.EntityID,
		&period.CalendarYear,
		&period.PeriodCount,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	period.CreatedAt = createdAt.Time

	return period, nil
}
