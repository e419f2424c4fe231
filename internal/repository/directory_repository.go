package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository is the identity collaborator: the core only needs
// existence checks against the user directory.
type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

// Exists reports whether the user id is known.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := r.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// ChannelRepository is the channel registry collaborator.
type ChannelRepository struct {
	*base.Repository
}

func NewChannelRepository(pool *pgxpool.Pool) *ChannelRepository {
	return &ChannelRepository{Repository: base.NewRepository(pool)}
}

// Exists reports whether the channel id is known.
func (r *ChannelRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM channels WHERE id = $1)`

	var exists bool
	if err := r.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check channel exists: %w", err)
	}
	return exists, nil
}

// ListIDs returns every registered channel id, used by the daily job.
func (r *ChannelRepository) ListIDs(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM channels ORDER BY id`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan channel id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MonthlyGoalRepository reads the monthly revenue goals maintained by the
// goal administration outside this service.
type MonthlyGoalRepository struct {
	*base.Repository
}

func NewMonthlyGoalRepository(pool *pgxpool.Pool) *MonthlyGoalRepository {
	return &MonthlyGoalRepository{Repository: base.NewRepository(pool)}
}

// MonthlyGoal returns the goal for (channel, year, month), 0 when none is
// on file.
func (r *MonthlyGoalRepository) MonthlyGoal(ctx context.Context, channelID string, year int, month time.Month) (float64, error) {
	query := `SELECT goal FROM monthly_goals WHERE channel_id = $1 AND year = $2 AND month = $3`

	var goal float64
	err := r.QueryRow(ctx, query, channelID, year, int(month)).Scan(&goal)
	if base.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get monthly goal: %w", err)
	}
	return goal, nil
}
