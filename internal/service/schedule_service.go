package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"go.uber.org/zap"
)

// ScheduleService owns the period registry: the canonical recurring time
// slots per channel and role.
type ScheduleService struct {
	periods  PeriodStore
	channels ChannelDirectory
	logger   *zap.Logger
}

func NewScheduleService(periods PeriodStore, channels ChannelDirectory, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		periods:  periods,
		channels: channels,
		logger:   logger,
	}
}

// CreatePeriod registers a new recurring slot after validating the window
// and checking it against every existing slot of the same channel and role.
func (s *ScheduleService) CreatePeriod(ctx context.Context, channelID string, role model.Role, start, end model.TimeOfDay) (*model.Period, error) {
	if err := s.validateWindow(role, start, end); err != nil {
		return nil, err
	}

	exists, err := s.channels.Exists(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("check channel: %w", err)
	}
	if !exists {
		return nil, &model.NotFoundError{Entity: "channel", ID: channelID}
	}

	if err := s.checkOverlap(ctx, channelID, role, start, end, 0); err != nil {
		return nil, err
	}

	period := &model.Period{
		ChannelID: channelID,
		Role:      role,
		StartTime: start,
		EndTime:   end,
	}

	if err := s.periods.Create(ctx, period); err != nil {
		return nil, fmt.Errorf("create period: %w", err)
	}

	s.logger.Info("Period created",
		zap.Int64("period_id", period.ID),
		zap.String("channel_id", channelID),
		zap.String("role", string(role)),
		zap.String("window", start.String()+"-"+end.String()))

	return period, nil
}

// UpdatePeriod changes an existing slot's role or window, re-running the
// overlap check against everything but itself.
func (s *ScheduleService) UpdatePeriod(ctx context.Context, id int64, role model.Role, start, end model.TimeOfDay) (*model.Period, error) {
	period, err := s.periods.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get period: %w", err)
	}
	if period == nil {
		return nil, &model.NotFoundError{Entity: "period", ID: strconv.FormatInt(id, 10)}
	}

	if err := s.validateWindow(role, start, end); err != nil {
		return nil, err
	}

	if err := s.checkOverlap(ctx, period.ChannelID, role, start, end, id); err != nil {
		return nil, err
	}

	period.Role = role
	period.StartTime = start
	period.EndTime = end

	if err := s.periods.Update(ctx, period); err != nil {
		return nil, fmt.Errorf("update period: %w", err)
	}

	s.logger.Info("Period updated",
		zap.Int64("period_id", id),
		zap.String("window", start.String()+"-"+end.String()))

	return period, nil
}

// DeletePeriod removes the slot unconditionally. Historical snapshots keep
// their denormalized copies; the next synchronize pass drops snapshots
// whose source period is gone.
func (s *ScheduleService) DeletePeriod(ctx context.Context, id int64) error {
	period, err := s.periods.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get period: %w", err)
	}
	if period == nil {
		return &model.NotFoundError{Entity: "period", ID: strconv.FormatInt(id, 10)}
	}

	if err := s.periods.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete period: %w", err)
	}

	s.logger.Info("Period deleted", zap.Int64("period_id", id))
	return nil
}

// ListByChannel returns the channel's periods ordered by start time.
func (s *ScheduleService) ListByChannel(ctx context.Context, channelID string) ([]*model.Period, error) {
	return s.periods.GetByChannel(ctx, channelID)
}

func (s *ScheduleService) validateWindow(role model.Role, start, end model.TimeOfDay) error {
	if !role.Valid() {
		return &model.ValidationError{Entity: "period", Message: fmt.Sprintf("unknown role %q", role)}
	}
	if err := start.Validate(); err != nil {
		return &model.ValidationError{Entity: "period", Message: "start time: " + err.Error()}
	}
	if err := end.Validate(); err != nil {
		return &model.ValidationError{Entity: "period", Message: "end time: " + err.Error()}
	}
	if start.Minutes() == end.Minutes() {
		return &model.ValidationError{Entity: "period", Message: "start and end must differ"}
	}
	return nil
}

func (s *ScheduleService) checkOverlap(ctx context.Context, channelID string, role model.Role, start, end model.TimeOfDay, excludeID int64) error {
	existing, err := s.periods.GetByChannelRole(ctx, channelID, role)
	if err != nil {
		return fmt.Errorf("get periods: %w", err)
	}

	for _, p := range existing {
		if p.ID == excludeID {
			continue
		}
		if model.Overlaps(start, end, p.StartTime, p.EndTime) {
			return &model.ValidationError{
				Entity: "period",
				Message: fmt.Sprintf("window %s-%s overlaps period %d (%s on channel %s)",
					start, end, p.ID, p.Role, p.ChannelID),
			}
		}
	}
	return nil
}
