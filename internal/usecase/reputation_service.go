package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/user"
)

// ReputationClient fetches a user's score and tier from the external
// reputation provider.
type ReputationClient interface {
	Fetch(ctx context.Context, userID string) (user.Reputation, error)
}

// ReputationService refreshes the locally cached reputation snapshot that
// eligibility checks read. Lifecycle operations never call the provider
// directly.
type ReputationService struct {
	userRepo user.Repository
	client   ReputationClient
	logger   *slog.Logger
	now      func() time.Time
}

func NewReputationService(userRepo user.Repository, client ReputationClient, logger *slog.Logger) *ReputationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ReputationService{
		userRepo: userRepo,
		client:   client,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ReputationService) RefreshReputation(ctx context.Context, userID string) (user.Reputation, error) {
	ctx, span := startUsecaseSpan(ctx, "ReputationService.RefreshReputation")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return user.Reputation{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	if _, exists, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return user.Reputation{}, fmt.Errorf("get user: %w", err)
	} else if !exists {
		return user.Reputation{}, fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}

	rep, err := s.client.Fetch(ctx, userID)
	if err != nil {
		return user.Reputation{}, fmt.Errorf("%w: fetch reputation: %s", ErrDependencyUnavailable, err)
	}

	if err := s.userRepo.UpdateReputation(ctx, userID, rep); err != nil {
		return user.Reputation{}, fmt.Errorf("update reputation: %w", err)
	}

	s.logger.InfoContext(ctx, "reputation refreshed",
		"user_id", userID,
		"score", rep.Score,
		"tier", rep.Tier.String(),
	)

	return rep, nil
}
