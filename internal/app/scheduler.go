package app

import (
	"context"
	"errors"
	"time"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/dncmaduro/candy-cal-be-sub000/internal/service"
	"go.uber.org/zap"
)

// syncWindowDays is how far back the daily job re-synchronizes livestreams
// against the period registry.
const syncWindowDays = 7

// Scheduler runs the periodic background jobs: materializing today's
// livestream for every channel and re-synchronizing the trailing window.
type Scheduler struct {
	livestreamService *service.LivestreamService
	channels          service.ChannelDirectory
	logger            *zap.Logger
	stopChan          chan struct{}
}

// NewScheduler creates the background scheduler.
func NewScheduler(livestreamService *service.LivestreamService, channels service.ChannelDirectory, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		livestreamService: livestreamService,
		channels:          channels,
		logger:            logger,
		stopChan:          make(chan struct{}),
	}
}

// Start launches the background tasks.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runDailyTask(ctx)
}

// Stop stops the background tasks.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runDailyTask materializes and synchronizes once at startup and then
// every 24 hours.
func (s *Scheduler) runDailyTask(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-s.stopChan:
			s.logger.Info("Daily schedule task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Daily schedule task cancelled")
			return
		}
	}
}

// runOnce processes every channel independently; one channel failing does
// not stop the others.
func (s *Scheduler) runOnce(ctx context.Context) {
	s.logger.Info("Starting daily schedule maintenance")

	channelIDs, err := s.channels.ListIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list channels", zap.Error(err))
		return
	}

	today := service.NormalizeDate(time.Now())
	from := today.AddDate(0, 0, -syncWindowDays)

	for _, channelID := range channelIDs {
		_, err := s.livestreamService.Materialize(ctx, today, channelID)
		if err != nil && !errors.Is(err, model.ErrConflict) {
			s.logger.Error("Failed to materialize livestream",
				zap.String("channel_id", channelID),
				zap.Error(err))
		}

		updated, err := s.livestreamService.Synchronize(ctx, from, today, channelID)
		if err != nil {
			s.logger.Error("Failed to synchronize livestreams",
				zap.String("channel_id", channelID),
				zap.Error(err))
			continue
		}
		if updated > 0 {
			s.logger.Info("Livestreams synchronized",
				zap.String("channel_id", channelID),
				zap.Int("updated", updated))
		}
	}

	s.logger.Info("Daily schedule maintenance completed")
}
