package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/app"
	"github.com/dncmaduro/candy-cal-be-sub000/internal/config"
	"github.com/dncmaduro/candy-cal-be-sub000/internal/controller"
	"github.com/dncmaduro/candy-cal-be-sub000/internal/repository"
	"github.com/dncmaduro/candy-cal-be-sub000/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	location := time.Local
	if cfg.Timezone != "" {
		location, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			logger.Fatal("Failed to load timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	periodRepo := repository.NewPeriodRepository(pool, logger)
	livestreamRepo := repository.NewLivestreamRepository(pool, logger)
	altRequestRepo := repository.NewAltRequestRepository(pool)
	tierRepo := repository.NewTierRepository(pool)
	configRepo := repository.NewSalaryConfigRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	channelRepo := repository.NewChannelRepository(pool)
	goalRepo := repository.NewMonthlyGoalRepository(pool)

	scheduleService := service.NewScheduleService(periodRepo, channelRepo, logger)
	livestreamService := service.NewLivestreamService(livestreamRepo, periodRepo, goalRepo, channelRepo, logger)
	altRequestService := service.NewAltRequestService(altRequestRepo, livestreamRepo, userRepo, logger)
	reconcileService := service.NewReconcileService(livestreamRepo, location, logger)
	salaryService := service.NewSalaryService(tierRepo, configRepo, livestreamRepo, logger)

	scheduler := app.NewScheduler(livestreamService, channelRepo, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	handler := &controller.Handler{
		Schedule:    scheduleService,
		Livestreams: livestreamService,
		AltRequests: altRequestService,
		Reconciler:  reconcileService,
		Salary:      salaryService,
		Location:    location,
		Logger:      logger,
	}

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: controller.NewRouter(handler),
	}

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("environment", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
}
