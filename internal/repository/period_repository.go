package repository

import (
	"context"
	"fmt"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/dncmaduro/candy-cal-be-sub000/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PeriodRepository manages the period registry table.
type PeriodRepository struct {
	*base.Repository
	logger *zap.Logger
}

func NewPeriodRepository(pool *pgxpool.Pool, logger *zap.Logger) *PeriodRepository {
	return &PeriodRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

const periodColumns = `id, channel_id, role, start_hour, start_minute, end_hour, end_minute, created_at, updated_at`

// Create inserts a new period.
func (r *PeriodRepository) Create(ctx context.Context, period *model.Period) error {
	query := `
		INSERT INTO periods (channel_id, role, start_hour, start_minute, end_hour, end_minute)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx,
		query,
		period.ChannelID,
		period.Role,
		period.StartTime.Hour,
		period.StartTime.Minute,
		period.EndTime.Hour,
		period.EndTime.Minute,
	).Scan(&period.ID, &period.CreatedAt, &period.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create period: %w", err)
	}

	return nil
}

// GetByID fetches one period, (nil, nil) when missing.
func (r *PeriodRepository) GetByID(ctx context.Context, id int64) (*model.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE id = $1`

	period, err := scanPeriod(r.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get period by id: %w", err)
	}

	return period, nil
}

// GetByChannel returns the channel's periods ordered by start time.
func (r *PeriodRepository) GetByChannel(ctx context.Context, channelID string) ([]*model.Period, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM periods
		WHERE channel_id = $1
		ORDER BY start_hour, start_minute, role
	`

	rows, err := r.Query(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("get periods by channel: %w", err)
	}
	defer rows.Close()

	return collectPeriods(rows)
}

// GetByChannelRole returns the periods sharing one channel and role.
func (r *PeriodRepository) GetByChannelRole(ctx context.Context, channelID string, role model.Role) ([]*model.Period, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM periods
		WHERE channel_id = $1 AND role = $2
		ORDER BY start_hour, start_minute
	`

	rows, err := r.Query(ctx, query, channelID, role)
	if err != nil {
		return nil, fmt.Errorf("get periods by channel and role: %w", err)
	}
	defer rows.Close()

	return collectPeriods(rows)
}

// Update rewrites a period's role and window.
func (r *PeriodRepository) Update(ctx context.Context, period *model.Period) error {
	query := `
		UPDATE periods
		SET role = $2, start_hour = $3, start_minute = $4, end_hour = $5, end_minute = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx,
		query,
		period.ID,
		period.Role,
		period.StartTime.Hour,
		period.StartTime.Minute,
		period.EndTime.Hour,
		period.EndTime.Minute,
	).Scan(&period.UpdatedAt)

	if err != nil {
		return fmt.Errorf("update period: %w", err)
	}

	return nil
}

// Delete removes a period. Snapshots keep their denormalized copies.
func (r *PeriodRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM periods WHERE id = $1`

	if _, err := r.ExecAffected(ctx, query, id); err != nil {
		return fmt.Errorf("delete period: %w", err)
	}

	return nil
}

func scanPeriod(row pgx.Row) (*model.Period, error) {
	period := &model.Period{}
	err := row.Scan(
		&period.ID,
		&period.ChannelID,
		&period.Role,
		&period.StartTime.Hour,
		&period.StartTime.Minute,
		&period.EndTime.Hour,
		&period.EndTime.Minute,
		&period.CreatedAt,
		&period.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return period, nil
}

func collectPeriods(rows pgx.Rows) ([]*model.Period, error) {
	var periods []*model.Period
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		periods = append(periods, period)
	}
	return periods, rows.Err()
}
