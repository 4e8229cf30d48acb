package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bookkeeper/internal/domain"
)

// ReportingPeriodRepository implements usecase.ReportingPeriodRepository.
type ReportingPeriodRepository struct {
	pool *pgxpool.Pool
}

// NewReportingPeriodRepository creates a new ReportingPeriodRepository.
func NewReportingPeriodRepository(pool *pgxpool.Pool) *ReportingPeriodRepository {
	return &ReportingPeriodRepository{pool: pool}
}

// GetOrCreate returns the entity's reporting period for the calendar
// year, creating it when absent. The (entity_id, calendar_year) unique
// constraint makes concurrent creation converge on one row.
func (r *ReportingPeriodRepository) GetOrCreate(ctx context.Context, entityID string, calendarYear int, id string) (*domain.ReportingPeriod, error) {
	period, err := r.getByYear(ctx, entityID, calendarYear)
	if err == nil {
		return period, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	insert := `
		INSERT INTO reporting_periods (id, entity_id, calendar_year, period_count, created_at)
		SELECT $1, $2, $3, COALESCE(MAX(period_count), 0) + 1, NOW()
		FROM reporting_periods
		WHERE entity_id = $2
		ON CONFLICT (entity_id, calendar_year) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, insert, id, entityID, calendarYear); err != nil {
		return nil, err
	}

	return r.getByYear(ctx, entityID, calendarYear)
}

func (r *ReportingPeriodRepository) getByYear(ctx context.Context, entityID string, calendarYear int) (*domain.ReportingPeriod, error) {
	query := `
		SELECT id, entity_id, calendar_year, period_count, created_at
		FROM reporting_periods
		WHERE entity_id = $1 AND calendar_year = $2
		  AND deleted_at IS NULL AND destroyed_at IS NULL
	`

	period := &domain.ReportingPeriod{}

	var createdAt pgtype.Timestamptz

	err := r.pool.QueryRow(ctx, query, entityID, calendarYear).Scan(
		&period.ID,
		&period.EntityID,
		&period.CalendarYear,
		&period.PeriodCount,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	period.CreatedAt = createdAt.Time

	return period, nil
}
