package service

import (
	"context"
	"time"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/google/uuid"
)

// Store interfaces consumed by the services. The pgx repositories implement
// them; tests use in-memory fakes. Get* methods return (nil, nil) when the
// entity does not exist.

type PeriodStore interface {
	Create(ctx context.Context, period *model.Period) error
	GetByID(ctx context.Context, id int64) (*model.Period, error)
	GetByChannel(ctx context.Context, channelID string) ([]*model.Period, error)
	GetByChannelRole(ctx context.Context, channelID string, role model.Role) ([]*model.Period, error)
	Update(ctx context.Context, period *model.Period) error
	Delete(ctx context.Context, id int64) error
}

type LivestreamStore interface {
	Create(ctx context.Context, ls *model.Livestream) error
	GetByID(ctx context.Context, id int64) (*model.Livestream, error)
	GetByDateChannel(ctx context.Context, date time.Time, channelID string) (*model.Livestream, error)
	// GetByDate returns every livestream on the date; channelID narrows to
	// one channel when non-empty.
	GetByDate(ctx context.Context, date time.Time, channelID string) ([]*model.Livestream, error)
	GetRange(ctx context.Context, from, to time.Time, channelID string) ([]*model.Livestream, error)
	GetByMonth(ctx context.Context, year int, month time.Month, channelID string) ([]*model.Livestream, error)
	// Update rewrites the livestream row and its whole snapshot list as one
	// unit, guarded by the optimistic version counter.
	Update(ctx context.Context, ls *model.Livestream) error
}

type AltRequestStore interface {
	Create(ctx context.Context, req *model.AltRequest) error
	GetByID(ctx context.Context, id int64) (*model.AltRequest, error)
	GetPending(ctx context.Context, livestreamID int64, snapshotID uuid.UUID) (*model.AltRequest, error)
	Update(ctx context.Context, req *model.AltRequest) error
	Delete(ctx context.Context, id int64) error
}

type TierStore interface {
	Create(ctx context.Context, tier *model.PerformanceTier) error
	GetByID(ctx context.Context, id int64) (*model.PerformanceTier, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.PerformanceTier, error)
	GetAll(ctx context.Context) ([]*model.PerformanceTier, error)
	Update(ctx context.Context, tier *model.PerformanceTier) error
	Delete(ctx context.Context, id int64) error
}

type SalaryConfigStore interface {
	Create(ctx context.Context, cfg *model.SalaryConfig) error
	GetByID(ctx context.Context, id int64) (*model.SalaryConfig, error)
	GetByName(ctx context.Context, name string) (*model.SalaryConfig, error)
	GetByEmployee(ctx context.Context, employeeID string) (*model.SalaryConfig, error)
	GetAll(ctx context.Context) ([]*model.SalaryConfig, error)
	Update(ctx context.Context, cfg *model.SalaryConfig) error
	Delete(ctx context.Context, id int64) error
}

// GoalStore reads monthly revenue goals maintained elsewhere.
type GoalStore interface {
	// MonthlyGoal returns 0 when no goal is on file.
	MonthlyGoal(ctx context.Context, channelID string, year int, month time.Month) (float64, error)
}

// UserDirectory is the external identity collaborator.
type UserDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// ChannelDirectory is the external channel registry collaborator.
type ChannelDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
	ListIDs(ctx context.Context) ([]string, error)
}
