package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/dncmaduro/candy-cal-be-sub000/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// LivestreamRepository persists livestreams and their snapshot lists. A
// livestream and its snapshots are rewritten as one unit inside a
// transaction; the version column detects concurrent rewrites.
type LivestreamRepository struct {
	*base.Repository
	logger *zap.Logger
}

func NewLivestreamRepository(pool *pgxpool.Pool, logger *zap.Logger) *LivestreamRepository {
	return &LivestreamRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

const livestreamColumns = `id, date, channel_id, total_orders, ads_cost, total_income, date_kpi, fixed, version, created_at, updated_at`

const snapshotColumns = `id, period_id, channel_id, role, start_hour, start_minute, end_hour, end_minute,
	assignee, alt_assignee, alt_note, income, real_income, ads_cost, orders, comments,
	click_rate, avg_viewing_duration, snapshot_kpi, salary_per_hour, bonus_percentage, salary_total`

// Create inserts the livestream and its snapshots in one transaction.
func (r *LivestreamRepository) Create(ctx context.Context, ls *model.Livestream) error {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO livestreams (date, channel_id, total_orders, ads_cost, total_income, date_kpi, fixed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, version, created_at, updated_at
	`

	err = tx.QueryRow(
		ctx,
		query,
		ls.Date,
		ls.ChannelID,
		ls.TotalOrders,
		ls.AdsCost,
		ls.TotalIncome,
		ls.DateKpi,
		ls.Fixed,
	).Scan(&ls.ID, &ls.Version, &ls.CreatedAt, &ls.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create livestream: %w", err)
	}

	if err := insertSnapshots(ctx, tx, ls.ID, ls.Snapshots); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID fetches one livestream with its snapshots, (nil, nil) when
// missing.
func (r *LivestreamRepository) GetByID(ctx context.Context, id int64) (*model.Livestream, error) {
	query := `SELECT ` + livestreamColumns + ` FROM livestreams WHERE id = $1`

	ls, err := scanLivestream(r.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get livestream by id: %w", err)
	}

	if err := r.loadSnapshots(ctx, ls); err != nil {
		return nil, err
	}
	return ls, nil
}

// GetByDateChannel fetches the livestream of one date and channel.
func (r *LivestreamRepository) GetByDateChannel(ctx context.Context, date time.Time, channelID string) (*model.Livestream, error) {
	query := `SELECT ` + livestreamColumns + ` FROM livestreams WHERE date = $1 AND channel_id = $2`

	ls, err := scanLivestream(r.QueryRow(ctx, query, date, channelID))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get livestream by date and channel: %w", err)
	}

	if err := r.loadSnapshots(ctx, ls); err != nil {
		return nil, err
	}
	return ls, nil
}

// GetByDate returns the date's livestreams, narrowed to one channel when
// channelID is non-empty.
func (r *LivestreamRepository) GetByDate(ctx context.Context, date time.Time, channelID string) ([]*model.Livestream, error) {
	query := `
		SELECT ` + livestreamColumns + `
		FROM livestreams
		WHERE date = $1 AND ($2 = '' OR channel_id = $2)
		ORDER BY channel_id
	`

	return r.queryStreams(ctx, query, date, channelID)
}

// GetRange returns the channel's livestreams with date in [from, to].
func (r *LivestreamRepository) GetRange(ctx context.Context, from, to time.Time, channelID string) ([]*model.Livestream, error) {
	query := `
		SELECT ` + livestreamColumns + `
		FROM livestreams
		WHERE date >= $1 AND date <= $2 AND ($3 = '' OR channel_id = $3)
		ORDER BY date, channel_id
	`

	return r.queryStreams(ctx, query, from, to, channelID)
}

// GetByMonth returns the month's livestreams, optionally for one channel.
func (r *LivestreamRepository) GetByMonth(ctx context.Context, year int, month time.Month, channelID string) ([]*model.Livestream, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	return r.GetRange(ctx, from, to, channelID)
}

// Update rewrites the livestream row and replaces its whole snapshot list.
// A stale version returns model.ErrConcurrentModification.
func (r *LivestreamRepository) Update(ctx context.Context, ls *model.Livestream) error {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE livestreams
		SET total_orders = $2, ads_cost = $3, total_income = $4, date_kpi = $5, fixed = $6,
		    version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $7
		RETURNING version, updated_at
	`

	err = tx.QueryRow(
		ctx,
		query,
		ls.ID,
		ls.TotalOrders,
		ls.AdsCost,
		ls.TotalIncome,
		ls.DateKpi,
		ls.Fixed,
		ls.Version,
	).Scan(&ls.Version, &ls.UpdatedAt)

	if base.IsNotFound(err) {
		return model.ErrConcurrentModification
	}
	if err != nil {
		return fmt.Errorf("update livestream: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM snapshots WHERE livestream_id = $1`, ls.ID); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}

	if err := insertSnapshots(ctx, tx, ls.ID, ls.Snapshots); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *LivestreamRepository) queryStreams(ctx context.Context, query string, args ...interface{}) ([]*model.Livestream, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get livestreams: %w", err)
	}
	defer rows.Close()

	var streams []*model.Livestream
	for rows.Next() {
		ls, err := scanLivestream(rows)
		if err != nil {
			return nil, fmt.Errorf("scan livestream: %w", err)
		}
		streams = append(streams, ls)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, ls := range streams {
		if err := r.loadSnapshots(ctx, ls); err != nil {
			return nil, err
		}
	}
	return streams, nil
}

func (r *LivestreamRepository) loadSnapshots(ctx context.Context, ls *model.Livestream) error {
	query := `
		SELECT ` + snapshotColumns + `
		FROM snapshots
		WHERE livestream_id = $1
		ORDER BY position
	`

	rows, err := r.Query(ctx, query, ls.ID)
	if err != nil {
		return fmt.Errorf("get snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return fmt.Errorf("scan snapshot: %w", err)
		}
		ls.Snapshots = append(ls.Snapshots, *snap)
	}
	return rows.Err()
}

func insertSnapshots(ctx context.Context, tx pgx.Tx, livestreamID int64, snapshots []model.Snapshot) error {
	query := `
		INSERT INTO snapshots (
			id, livestream_id, position, period_id, channel_id, role,
			start_hour, start_minute, end_hour, end_minute,
			assignee, alt_assignee, alt_note, income, real_income, ads_cost, orders, comments,
			click_rate, avg_viewing_duration, snapshot_kpi, salary_per_hour, bonus_percentage, salary_total
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`

	for i := range snapshots {
		snap := &snapshots[i]

		var salaryPerHour, bonusPercentage, salaryTotal *float64
		if snap.Salary != nil {
			salaryPerHour = &snap.Salary.SalaryPerHour
			bonusPercentage = &snap.Salary.BonusPercentage
			salaryTotal = &snap.Salary.Total
		}

		_, err := tx.Exec(
			ctx,
			query,
			snap.ID,
			livestreamID,
			i,
			snap.PeriodID,
			snap.ChannelID,
			snap.Role,
			snap.StartTime.Hour,
			snap.StartTime.Minute,
			snap.EndTime.Hour,
			snap.EndTime.Minute,
			snap.Assignee,
			altAssigneeToColumn(snap.AltAssignee),
			snap.AltNote,
			snap.Income,
			snap.RealIncome,
			snap.AdsCost,
			snap.Orders,
			snap.Comments,
			snap.ClickRate,
			snap.AvgViewingDuration,
			snap.SnapshotKpi,
			salaryPerHour,
			bonusPercentage,
			salaryTotal,
		)
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}

	return nil
}

func scanLivestream(row pgx.Row) (*model.Livestream, error) {
	ls := &model.Livestream{}
	err := row.Scan(
		&ls.ID,
		&ls.Date,
		&ls.ChannelID,
		&ls.TotalOrders,
		&ls.AdsCost,
		&ls.TotalIncome,
		&ls.DateKpi,
		&ls.Fixed,
		&ls.Version,
		&ls.CreatedAt,
		&ls.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ls, nil
}

func scanSnapshot(rows pgx.Rows) (*model.Snapshot, error) {
	snap := &model.Snapshot{}
	var altAssignee *string
	var salaryPerHour, bonusPercentage, salaryTotal *float64

	err := rows.Scan(
		&snap.ID,
		&snap.PeriodID,
		&snap.ChannelID,
		&snap.Role,
		&snap.StartTime.Hour,
		&snap.StartTime.Minute,
		&snap.EndTime.Hour,
		&snap.EndTime.Minute,
		&snap.Assignee,
		&altAssignee,
		&snap.AltNote,
		&snap.Income,
		&snap.RealIncome,
		&snap.AdsCost,
		&snap.Orders,
		&snap.Comments,
		&snap.ClickRate,
		&snap.AvgViewingDuration,
		&snap.SnapshotKpi,
		&salaryPerHour,
		&bonusPercentage,
		&salaryTotal,
	)
	if err != nil {
		return nil, err
	}

	snap.AltAssignee = altAssigneeFromColumn(altAssignee)
	if salaryTotal != nil {
		snap.Salary = &model.Salary{Total: *salaryTotal}
		if salaryPerHour != nil {
			snap.Salary.SalaryPerHour = *salaryPerHour
		}
		if bonusPercentage != nil {
			snap.Salary.BonusPercentage = *bonusPercentage
		}
	}

	return snap, nil
}

// altAssigneeOther is the stored sentinel for a disclaimed attribution. The
// domain never sees the raw string; only this mapping does.
const altAssigneeOther = "other"

func altAssigneeToColumn(a model.AltAssignee) *string {
	switch a.Kind {
	case model.AltUser:
		v := a.UserID
		return &v
	case model.AltOther:
		v := altAssigneeOther
		return &v
	}
	return nil
}

func altAssigneeFromColumn(v *string) model.AltAssignee {
	switch {
	case v == nil:
		return model.AltAssignee{Kind: model.AltUnset}
	case *v == altAssigneeOther:
		return model.AltAssigneeOther()
	default:
		return model.AltAssigneeUser(*v)
	}
}
