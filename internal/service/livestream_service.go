package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LivestreamService materializes daily livestreams from the period registry
// and keeps them synchronized with it, and applies manual snapshot edits.
type LivestreamService struct {
	livestreams LivestreamStore
	periods     PeriodStore
	goals       GoalStore
	channels    ChannelDirectory
	logger      *zap.Logger
}

func NewLivestreamService(
	livestreams LivestreamStore,
	periods PeriodStore,
	goals GoalStore,
	channels ChannelDirectory,
	logger *zap.Logger,
) *LivestreamService {
	return &LivestreamService{
		livestreams: livestreams,
		periods:     periods,
		goals:       goals,
		channels:    channels,
		logger:      logger,
	}
}

// NormalizeDate truncates a timestamp to local midnight, the canonical form
// of a livestream date.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Materialize creates the livestream for one date and channel from the
// current period registry. One zeroed snapshot is created per period,
// carrying the period's window and role plus the day's KPI share.
func (s *LivestreamService) Materialize(ctx context.Context, date time.Time, channelID string) (*model.Livestream, error) {
	date = NormalizeDate(date)

	exists, err := s.channels.Exists(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("check channel: %w", err)
	}
	if !exists {
		return nil, &model.NotFoundError{Entity: "channel", ID: channelID}
	}

	existing, err := s.livestreams.GetByDateChannel(ctx, date, channelID)
	if err != nil {
		return nil, fmt.Errorf("get livestream: %w", err)
	}
	if existing != nil {
		return nil, &model.ConflictError{
			Entity:  "livestream",
			Message: fmt.Sprintf("livestream for channel %s on %s already exists", channelID, date.Format("2006-01-02")),
		}
	}

	periods, err := s.periods.GetByChannel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("get periods: %w", err)
	}

	ls := &model.Livestream{
		Date:      date,
		ChannelID: channelID,
	}

	if len(periods) > 0 {
		goal, err := s.goals.MonthlyGoal(ctx, channelID, date.Year(), date.Month())
		if err != nil {
			return nil, fmt.Errorf("get monthly goal: %w", err)
		}
		if goal > 0 {
			ls.DateKpi = roundToStep(goal/float64(daysInMonth(date)), 1000)
		}

		perSnapshotKpi := roundToStep(ls.DateKpi/float64(len(periods)), 1000)
		for _, p := range periods {
			ls.Snapshots = append(ls.Snapshots, newSnapshotFromPeriod(p, perSnapshotKpi))
		}
	}

	if err := s.livestreams.Create(ctx, ls); err != nil {
		return nil, fmt.Errorf("create livestream: %w", err)
	}

	s.logger.Info("Livestream materialized",
		zap.Int64("livestream_id", ls.ID),
		zap.String("channel_id", channelID),
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("snapshots", len(ls.Snapshots)),
		zap.Float64("date_kpi", ls.DateKpi))

	return ls, nil
}

// Synchronize makes every non-fixed livestream of the channel in
// [from, to] match the current period registry without discarding recorded
// performance data. It returns the number of livestreams rewritten; a
// second run with no intervening period change rewrites nothing.
func (s *LivestreamService) Synchronize(ctx context.Context, from, to time.Time, channelID string) (int, error) {
	periods, err := s.periods.GetByChannel(ctx, channelID)
	if err != nil {
		return 0, fmt.Errorf("get periods: %w", err)
	}

	streams, err := s.livestreams.GetRange(ctx, NormalizeDate(from), NormalizeDate(to), channelID)
	if err != nil {
		return 0, fmt.Errorf("get livestreams: %w", err)
	}

	updated := 0
	for _, ls := range streams {
		if ls.EnsureMutable() != nil {
			continue
		}

		rebuilt := rebuildSnapshots(ls, periods)
		if !snapshotsDiffer(ls.Snapshots, rebuilt) {
			continue
		}

		ls.Snapshots = rebuilt
		ls.RecomputeTotalIncome()
		if err := s.livestreams.Update(ctx, ls); err != nil {
			return updated, fmt.Errorf("update livestream %d: %w", ls.ID, err)
		}
		updated++

		s.logger.Info("Livestream synchronized",
			zap.Int64("livestream_id", ls.ID),
			zap.String("date", ls.Date.Format("2006-01-02")),
			zap.Int("snapshots", len(ls.Snapshots)))
	}

	return updated, nil
}

// GetByID returns one livestream with its snapshots.
func (s *LivestreamService) GetByID(ctx context.Context, id int64) (*model.Livestream, error) {
	ls, err := s.livestreams.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get livestream: %w", err)
	}
	if ls == nil {
		return nil, &model.NotFoundError{Entity: "livestream", ID: strconv.FormatInt(id, 10)}
	}
	return ls, nil
}

// GetByDate returns the date's livestreams, optionally for one channel.
func (s *LivestreamService) GetByDate(ctx context.Context, date time.Time, channelID string) ([]*model.Livestream, error) {
	return s.livestreams.GetByDate(ctx, NormalizeDate(date), channelID)
}

// SetFixed freezes or unfreezes a livestream. Unfreezing is the one
// mutation allowed on a fixed livestream.
func (s *LivestreamService) SetFixed(ctx context.Context, id int64, fixed bool) (*model.Livestream, error) {
	ls, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ls.Fixed == fixed {
		return ls, nil
	}

	ls.Fixed = fixed
	if err := s.livestreams.Update(ctx, ls); err != nil {
		return nil, fmt.Errorf("update livestream: %w", err)
	}

	s.logger.Info("Livestream fixed flag changed",
		zap.Int64("livestream_id", id),
		zap.Bool("fixed", fixed))

	return ls, nil
}

// AddSnapshot appends a manual snapshot for a period, subject to the frozen
// guard, the one-channel-per-livestream invariant and same-role overlap.
// The day's KPI is reshared evenly across the grown snapshot list.
func (s *LivestreamService) AddSnapshot(ctx context.Context, livestreamID, periodID int64, assignee string, income float64) (*model.Livestream, error) {
	ls, err := s.GetByID(ctx, livestreamID)
	if err != nil {
		return nil, err
	}
	if err := ls.EnsureMutable(); err != nil {
		return nil, err
	}

	period, err := s.periods.GetByID(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("get period: %w", err)
	}
	if period == nil {
		return nil, &model.NotFoundError{Entity: "period", ID: strconv.FormatInt(periodID, 10)}
	}
	if period.ChannelID != ls.ChannelID {
		return nil, &model.ValidationError{
			Entity:  "snapshot",
			Message: fmt.Sprintf("period %d belongs to channel %s, livestream belongs to %s", periodID, period.ChannelID, ls.ChannelID),
		}
	}

	for i := range ls.Snapshots {
		other := &ls.Snapshots[i]
		if other.Role != period.Role {
			continue
		}
		if model.Overlaps(period.StartTime, period.EndTime, other.StartTime, other.EndTime) {
			return nil, &model.ValidationError{
				Entity:  "snapshot",
				Message: fmt.Sprintf("window %s-%s overlaps snapshot %s of role %s", period.StartTime, period.EndTime, other.ID, other.Role),
			}
		}
	}

	snap := newSnapshotFromPeriod(period, 0)
	snap.Assignee = assignee
	snap.Income = income

	ls.Snapshots = append(ls.Snapshots, snap)
	if ls.DateKpi > 0 {
		perKpi := roundToStep(ls.DateKpi/float64(len(ls.Snapshots)), 1000)
		for i := range ls.Snapshots {
			ls.Snapshots[i].SnapshotKpi = perKpi
		}
	}
	ls.RecomputeTotalIncome()

	if err := s.livestreams.Update(ctx, ls); err != nil {
		return nil, fmt.Errorf("update livestream: %w", err)
	}

	s.logger.Info("Snapshot added",
		zap.Int64("livestream_id", livestreamID),
		zap.String("snapshot_id", snap.ID.String()),
		zap.Int64("period_id", periodID))

	return ls, nil
}

// SnapshotUpdate carries the fields of a manual snapshot edit; nil means
// unchanged.
type SnapshotUpdate struct {
	Assignee           *string  `json:"assignee,omitempty"`
	Income             *float64 `json:"income,omitempty"`
	RealIncome         *float64 `json:"real_income,omitempty"`
	AdsCost            *float64 `json:"ads_cost,omitempty"`
	Orders             *int     `json:"orders,omitempty"`
	Comments           *int     `json:"comments,omitempty"`
	ClickRate          *float64 `json:"click_rate,omitempty"`
	AvgViewingDuration *float64 `json:"avg_viewing_duration,omitempty"`
}

// UpdateSnapshot applies a manual edit. When the target is a host snapshot,
// the delta of each changed performance field is added onto every assistant
// snapshot whose window is fully contained in the host's window.
func (s *LivestreamService) UpdateSnapshot(ctx context.Context, livestreamID int64, snapshotID uuid.UUID, upd SnapshotUpdate) (*model.Livestream, error) {
	ls, err := s.GetByID(ctx, livestreamID)
	if err != nil {
		return nil, err
	}
	if err := ls.EnsureMutable(); err != nil {
		return nil, err
	}

	snap := ls.SnapshotByID(snapshotID)
	if snap == nil {
		return nil, &model.NotFoundError{Entity: "snapshot", ID: snapshotID.String()}
	}

	deltas := applyUpdate(snap, upd)

	if snap.Role == model.RoleHost && deltas.any() {
		for i := range ls.Snapshots {
			assistant := &ls.Snapshots[i]
			if assistant.Role != model.RoleAssistant {
				continue
			}
			if !model.Contains(snap.StartTime, snap.EndTime, assistant.StartTime, assistant.EndTime) {
				continue
			}
			assistant.Income += deltas.income
			assistant.RealIncome += deltas.realIncome
			assistant.AdsCost += deltas.adsCost
			assistant.Orders += deltas.orders
			assistant.Comments += deltas.comments
		}
	}

	ls.RecomputeTotalIncome()

	if err := s.livestreams.Update(ctx, ls); err != nil {
		return nil, fmt.Errorf("update livestream: %w", err)
	}

	s.logger.Info("Snapshot updated",
		zap.Int64("livestream_id", livestreamID),
		zap.String("snapshot_id", snapshotID.String()),
		zap.Bool("propagated", snap.Role == model.RoleHost && deltas.any()))

	return ls, nil
}

// RemoveSnapshot drops one snapshot from the livestream.
func (s *LivestreamService) RemoveSnapshot(ctx context.Context, livestreamID int64, snapshotID uuid.UUID) error {
	ls, err := s.GetByID(ctx, livestreamID)
	if err != nil {
		return err
	}
	if err := ls.EnsureMutable(); err != nil {
		return err
	}

	idx := -1
	for i := range ls.Snapshots {
		if ls.Snapshots[i].ID == snapshotID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &model.NotFoundError{Entity: "snapshot", ID: snapshotID.String()}
	}

	ls.Snapshots = append(ls.Snapshots[:idx], ls.Snapshots[idx+1:]...)
	ls.RecomputeTotalIncome()

	if err := s.livestreams.Update(ctx, ls); err != nil {
		return fmt.Errorf("update livestream: %w", err)
	}

	s.logger.Info("Snapshot removed",
		zap.Int64("livestream_id", livestreamID),
		zap.String("snapshot_id", snapshotID.String()))

	return nil
}

// fieldDeltas tracks how much each propagating field changed in one edit.
type fieldDeltas struct {
	income     float64
	realIncome float64
	adsCost    float64
	orders     int
	comments   int
	changed    int
}

func (d fieldDeltas) any() bool { return d.changed > 0 }

// applyUpdate mutates the snapshot and returns the deltas of the fields
// that propagate from host to contained assistant snapshots.
func applyUpdate(snap *model.Snapshot, upd SnapshotUpdate) fieldDeltas {
	var d fieldDeltas

	if upd.Assignee != nil {
		snap.Assignee = *upd.Assignee
	}
	if upd.Income != nil {
		d.income = *upd.Income - snap.Income
		snap.Income = *upd.Income
		d.changed++
	}
	if upd.RealIncome != nil {
		d.realIncome = *upd.RealIncome - snap.RealIncome
		snap.RealIncome = *upd.RealIncome
		d.changed++
	}
	if upd.AdsCost != nil {
		d.adsCost = *upd.AdsCost - snap.AdsCost
		snap.AdsCost = *upd.AdsCost
		d.changed++
	}
	if upd.Orders != nil {
		d.orders = *upd.Orders - snap.Orders
		snap.Orders = *upd.Orders
		d.changed++
	}
	if upd.Comments != nil {
		d.comments = *upd.Comments - snap.Comments
		snap.Comments = *upd.Comments
		d.changed++
	}
	if upd.ClickRate != nil {
		snap.ClickRate = *upd.ClickRate
	}
	if upd.AvgViewingDuration != nil {
		snap.AvgViewingDuration = *upd.AvgViewingDuration
	}

	return d
}

func newSnapshotFromPeriod(p *model.Period, snapshotKpi float64) model.Snapshot {
	return model.Snapshot{
		ID:          uuid.New(),
		PeriodID:    p.ID,
		ChannelID:   p.ChannelID,
		Role:        p.Role,
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		AltAssignee: model.AltAssignee{Kind: model.AltUnset},
		SnapshotKpi: snapshotKpi,
	}
}

// rebuildSnapshots produces the snapshot list the livestream should have
// under the current periods: existing snapshots keep their recorded data
// with refreshed denormalized fields, new periods get zeroed snapshots, and
// snapshots whose period is gone are dropped.
func rebuildSnapshots(ls *model.Livestream, periods []*model.Period) []model.Snapshot {
	byPeriod := make(map[int64]*model.Snapshot, len(ls.Snapshots))
	for i := range ls.Snapshots {
		byPeriod[ls.Snapshots[i].PeriodID] = &ls.Snapshots[i]
	}

	perKpi := 0.0
	if len(periods) > 0 {
		perKpi = roundToStep(ls.DateKpi/float64(len(periods)), 1000)
	}

	rebuilt := make([]model.Snapshot, 0, len(periods))
	for _, p := range periods {
		if existing, ok := byPeriod[p.ID]; ok {
			snap := *existing
			snap.Role = p.Role
			snap.StartTime = p.StartTime
			snap.EndTime = p.EndTime
			snap.SnapshotKpi = perKpi
			rebuilt = append(rebuilt, snap)
			continue
		}
		rebuilt = append(rebuilt, newSnapshotFromPeriod(p, perKpi))
	}

	return rebuilt
}

// snapshotsDiffer compares by count and per-index id/role/window, the
// signal that a synchronize run actually changed something.
func snapshotsDiffer(current, rebuilt []model.Snapshot) bool {
	if len(current) != len(rebuilt) {
		return true
	}
	for i := range current {
		a, b := &current[i], &rebuilt[i]
		if a.ID != b.ID || a.Role != b.Role ||
			a.StartTime != b.StartTime || a.EndTime != b.EndTime {
			return true
		}
	}
	return false
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
