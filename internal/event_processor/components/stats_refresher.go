package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/garage-sale-marketplace/internal/config"
	"github.com/garage-sale-marketplace/internal/domain/sale"
	"github.com/garage-sale-marketplace/internal/event_processor/service"
	"github.com/garage-sale-marketplace/internal/logger"
)

// StatsRefresherImpl rebuilds seller aggregates from the stored sales
type StatsRefresherImpl struct {
	statsRepo sale.StatsRepository
	cfg       config.StatsConfig
	logger    *slog.Logger
}

func NewStatsRefresher(statsRepo sale.StatsRepository, cfg config.StatsConfig, logger *slog.Logger) service.StatsRefresher {
	return &StatsRefresherImpl{
		statsRepo: statsRepo,
		cfg:       cfg,
		logger:    logger,
	}
}

// Refresh recomputes the aggregate, retrying with a linear backoff.
// Recompute overwrites the aggregate, so repeating it is safe.
func (r *StatsRefresherImpl) Refresh(ctx context.Context, sellerID string) (*sale.SellerStats, error) {
	log := logger.FromContext(ctx, r.logger)

	attempts := r.cfg.MaxRetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		stats, err := r.statsRepo.Recompute(ctx, sellerID)
		if err == nil {
			return stats, nil
		}
		lastErr = err
		log.Warn("Seller stats recompute failed",
			"seller_id", sellerID,
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err,
		)

		if attempt == attempts || r.cfg.RetryBackoff <= 0 {
			continue
		}
		timer := time.NewTimer(r.cfg.RetryBackoff * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("recompute stats for seller %s after %d attempts: %w", sellerID, attempts, lastErr)
}
