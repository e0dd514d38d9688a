package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/riskibarqy/squadhub/internal/config"
	"github.com/riskibarqy/squadhub/internal/usecase"
)

const sweepRunTimeout = time.Minute

// NewSweepScheduler runs the expiration sweeper on the configured cron
// schedule. Returns nil when sweeping is disabled; the internal job endpoint
// stays available either way.
func NewSweepScheduler(cfg config.Config, sweeper *usecase.SweeperService, logger *slog.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if !cfg.SweepEnabled {
		logger.Info("sweep scheduler disabled", "reason", "SWEEP_ENABLED=false")
		return nil, nil
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(cfg.SweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepRunTimeout)
		defer cancel()

		result, err := sweeper.SweepExpirations(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "scheduled expiration sweep failed", "error", err)
			return
		}

		logger.InfoContext(ctx, "scheduled expiration sweep finished",
			"expired_applications", result.ExpiredApplications,
			"expired_invites", result.ExpiredInvites,
			"expired_positions", result.ExpiredPositions,
		)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule sweep %q: %w", cfg.SweepSchedule, err)
	}

	return scheduler, nil
}
