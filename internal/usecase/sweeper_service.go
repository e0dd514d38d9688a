package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/squadhub/internal/domain/application"
	"github.com/riskibarqy/squadhub/internal/domain/invite"
	"github.com/riskibarqy/squadhub/internal/domain/notification"
	"github.com/riskibarqy/squadhub/internal/domain/position"
	"github.com/riskibarqy/squadhub/internal/domain/squad"
)

const (
	defaultSweepBatchSize = 500
	defaultSweepWorkers   = 8
)

// SweepResult counts what one sweep pass transitioned. Re-running a sweep
// immediately after returns all zeroes.
type SweepResult struct {
	ExpiredApplications int `json:"expiredApplications"`
	ExpiredInvites      int `json:"expiredInvites"`
	ExpiredPositions    int `json:"expiredPositions"`
}

// SweeperService expires overdue pending applications, pending invites and
// open positions. Every transition re-checks row state at commit, so the
// sweeper can race user actions and concurrent sweeps safely. A failing row
// is logged and skipped; it never aborts the batch.
type SweeperService struct {
	applicationRepo application.Repository
	inviteRepo      invite.Repository
	positionRepo    position.Repository
	squadRepo       squad.Repository
	notifier        *Notifier
	logger          *slog.Logger
	now             func() time.Time
	batchSize       int
	workers         int
}

func NewSweeperService(
	applicationRepo application.Repository,
	inviteRepo invite.Repository,
	positionRepo position.Repository,
	squadRepo squad.Repository,
	notifier *Notifier,
	logger *slog.Logger,
) *SweeperService {
	if logger == nil {
		logger = slog.Default()
	}

	return &SweeperService{
		applicationRepo: applicationRepo,
		inviteRepo:      inviteRepo,
		positionRepo:    positionRepo,
		squadRepo:       squadRepo,
		notifier:        notifier,
		logger:          logger,
		now:             time.Now,
		batchSize:       defaultSweepBatchSize,
		workers:         defaultSweepWorkers,
	}
}

func (s *SweeperService) SweepExpirations(ctx context.Context) (SweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "SweeperService.SweepExpirations")
	defer span.End()

	now := s.now().UTC()

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return SweepResult{}, fmt.Errorf("create sweep worker pool: %w", err)
	}
	defer pool.Release()

	var applications, invites, positions atomic.Int64

	var wg conc.WaitGroup
	wg.Go(func() {
		applications.Store(int64(s.sweepApplications(ctx, pool, now)))
	})
	wg.Go(func() {
		invites.Store(int64(s.sweepInvites(ctx, pool, now)))
	})
	wg.Go(func() {
		positions.Store(int64(s.sweepPositions(ctx, pool, now)))
	})
	wg.Wait()

	result := SweepResult{
		ExpiredApplications: int(applications.Load()),
		ExpiredInvites:      int(invites.Load()),
		ExpiredPositions:    int(positions.Load()),
	}

	s.logger.InfoContext(ctx, "expiration sweep finished",
		"expired_applications", result.ExpiredApplications,
		"expired_invites", result.ExpiredInvites,
		"expired_positions", result.ExpiredPositions,
	)

	return result, nil
}

func (s *SweeperService) sweepApplications(ctx context.Context, pool *ants.Pool, now time.Time) int {
	rows, err := s.applicationRepo.ListExpiredPending(ctx, now, s.batchSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "list expired applications", "error", err)
		return 0
	}

	var expired atomic.Int64
	var wg sync.WaitGroup
	for _, row := range rows {
		record := row
		task := func() {
			err := s.applicationRepo.Expire(ctx, record.ID, now)
			switch {
			case err == nil:
				expired.Add(1)
				s.notifier.Emit(ctx, record.ApplicantID, notification.KindApplicationExpired, map[string]any{
					"application_id": record.ID,
					"position_id":    record.PositionID,
				})
			case errors.Is(err, application.ErrNotPending), errors.Is(err, application.ErrNotExpired):
				// Lost the race to a user action or another sweep; nothing to do.
			default:
				s.logger.ErrorContext(ctx, "expire application", "error", err, "application_id", record.ID)
			}
		}
		submit(pool, &wg, task)
	}
	wg.Wait()

	return int(expired.Load())
}

func (s *SweeperService) sweepInvites(ctx context.Context, pool *ants.Pool, now time.Time) int {
	rows, err := s.inviteRepo.ListExpiredPending(ctx, now, s.batchSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "list expired invites", "error", err)
		return 0
	}

	var expired atomic.Int64
	var wg sync.WaitGroup
	for _, row := range rows {
		record := row
		task := func() {
			err := s.inviteRepo.Expire(ctx, record.ID, now)
			switch {
			case err == nil:
				expired.Add(1)
				s.notifier.Emit(ctx, record.InviteeID, notification.KindInviteExpired, map[string]any{
					"invite_id": record.ID,
					"squad_id":  record.SquadID,
				})
			case errors.Is(err, invite.ErrNotPending), errors.Is(err, invite.ErrNotExpired):
			default:
				s.logger.ErrorContext(ctx, "expire invite", "error", err, "invite_id", record.ID)
			}
		}
		submit(pool, &wg, task)
	}
	wg.Wait()

	return int(expired.Load())
}

func (s *SweeperService) sweepPositions(ctx context.Context, pool *ants.Pool, now time.Time) int {
	rows, err := s.positionRepo.ListExpiredOpen(ctx, now, s.batchSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "list expired positions", "error", err)
		return 0
	}

	var closed atomic.Int64
	var wg sync.WaitGroup
	for _, row := range rows {
		record := row
		task := func() {
			err := s.positionRepo.Close(ctx, record.ID)
			switch {
			case err == nil:
				closed.Add(1)
				s.notifyPositionExpired(ctx, record)
			case errors.Is(err, position.ErrClosed):
			default:
				s.logger.ErrorContext(ctx, "close expired position", "error", err, "position_id", record.ID)
			}
		}
		submit(pool, &wg, task)
	}
	wg.Wait()

	return int(closed.Load())
}

func (s *SweeperService) notifyPositionExpired(ctx context.Context, record position.Position) {
	owner, exists, err := s.squadRepo.GetByID(ctx, record.SquadID)
	if err != nil || !exists {
		return
	}
	s.notifier.Emit(ctx, owner.CaptainID, notification.KindPositionExpired, map[string]any{
		"position_id": record.ID,
		"squad_id":    record.SquadID,
	})
}

// submit hands the task to the shared pool, falling back to inline execution
// when the pool rejects it.
func submit(pool *ants.Pool, wg *sync.WaitGroup, task func()) {
	wg.Add(1)
	if err := pool.Submit(func() {
		defer wg.Done()
		task()
	}); err != nil {
		task()
		wg.Done()
	}
}
