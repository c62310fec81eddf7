package components

import (
	"log/slog"

	"github.com/garage-sale-marketplace/internal/config"
	"github.com/garage-sale-marketplace/internal/domain/sale"
	"github.com/garage-sale-marketplace/internal/domain/user"
	"github.com/garage-sale-marketplace/internal/event_processor/service"
)

// CreateProcessingService creates a new ProcessingService with all its dependencies.
// The base service is returned unwrapped when the worker pool is disabled or cannot be created.
func CreateProcessingService(
	statsRepo sale.StatsRepository,
	userRepo user.Repository,
	mailer EventMailer,
	logger *slog.Logger,
	cfg *config.Config,
) service.ProcessingService {
	statsRefresher := NewStatsRefresher(statsRepo, cfg.Stats, logger.With("component", "stats_refresher"))
	notifier := NewNotifier(userRepo, mailer, logger.With("component", "notifier"))

	baseService := service.NewProcessingService(statsRefresher, notifier, logger)

	if cfg.WorkerPool.Size <= 0 {
		logger.Warn("Worker pool disabled, processing events on the consumer goroutine", "pool_size", cfg.WorkerPool.Size)
		return baseService
	}

	workerPoolService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool processing service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
