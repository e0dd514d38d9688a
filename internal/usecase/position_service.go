package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/position"
	"github.com/riskibarqy/squadhub/internal/domain/squad"
	"github.com/riskibarqy/squadhub/internal/domain/user"
	idgen "github.com/riskibarqy/squadhub/internal/platform/id"
)

const (
	defaultPositionTTL  = 14 * 24 * time.Hour
	maxPositionCapacity = 20
)

// CreatePositionInput is the incoming payload for posting a recruiting slot.
type CreatePositionInput struct {
	SquadID      string
	ActingUserID string
	Role         string
	Benefits     []string
	MinTier      user.Tier
	Capacity     int
	// ExpiresAt defaults to two weeks out when zero.
	ExpiresAt time.Time
}

type PositionService struct {
	positionRepo position.Repository
	squadRepo    squad.Repository
	idGen        idgen.Generator
	logger       *slog.Logger
	now          func() time.Time
}

func NewPositionService(
	positionRepo position.Repository,
	squadRepo squad.Repository,
	idGen idgen.Generator,
	logger *slog.Logger,
) *PositionService {
	if logger == nil {
		logger = slog.Default()
	}

	return &PositionService{
		positionRepo: positionRepo,
		squadRepo:    squadRepo,
		idGen:        idGen,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *PositionService) CreatePosition(ctx context.Context, input CreatePositionInput) (position.Position, error) {
	ctx, span := startUsecaseSpan(ctx, "PositionService.CreatePosition")
	defer span.End()

	input.SquadID = strings.TrimSpace(input.SquadID)
	input.ActingUserID = strings.TrimSpace(input.ActingUserID)
	input.Role = strings.TrimSpace(input.Role)

	if input.SquadID == "" {
		return position.Position{}, fmt.Errorf("%w: squad id is required", ErrInvalidInput)
	}
	if input.ActingUserID == "" {
		return position.Position{}, fmt.Errorf("%w: acting user id is required", ErrInvalidInput)
	}
	if input.Role == "" {
		return position.Position{}, fmt.Errorf("%w: position role is required", ErrInvalidInput)
	}
	if input.Capacity < 1 || input.Capacity > maxPositionCapacity {
		return position.Position{}, fmt.Errorf("%w: capacity must be between 1 and %d", ErrInvalidInput, maxPositionCapacity)
	}

	now := s.now().UTC()
	expiresAt := input.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(defaultPositionTTL)
	}
	if !expiresAt.After(now) {
		return position.Position{}, fmt.Errorf("%w: expiry must be in the future", ErrInvalidInput)
	}

	owner, exists, err := s.squadRepo.GetByID(ctx, input.SquadID)
	if err != nil {
		return position.Position{}, fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return position.Position{}, fmt.Errorf("%w: squad=%s", ErrNotFound, input.SquadID)
	}
	if owner.CaptainID != input.ActingUserID {
		return position.Position{}, fmt.Errorf("%w: only the captain can post positions", ErrForbidden)
	}

	positionID, err := s.idGen.NewID()
	if err != nil {
		return position.Position{}, fmt.Errorf("generate position id: %w", err)
	}

	posting := position.Position{
		ID:        positionID,
		SquadID:   input.SquadID,
		Role:      input.Role,
		Benefits:  cleanBenefits(input.Benefits),
		MinTier:   input.MinTier,
		IsOpen:    true,
		Capacity:  input.Capacity,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := posting.Validate(); err != nil {
		return position.Position{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	if err := s.positionRepo.Create(ctx, posting); err != nil {
		return position.Position{}, fmt.Errorf("create position: %w", err)
	}

	s.logger.InfoContext(ctx, "position posted",
		"position_id", positionID,
		"squad_id", input.SquadID,
		"role", input.Role,
		"capacity", input.Capacity,
	)

	return posting, nil
}

func (s *PositionService) ClosePosition(ctx context.Context, positionID, actingUserID string) error {
	ctx, span := startUsecaseSpan(ctx, "PositionService.ClosePosition")
	defer span.End()

	positionID = strings.TrimSpace(positionID)
	actingUserID = strings.TrimSpace(actingUserID)
	if positionID == "" || actingUserID == "" {
		return fmt.Errorf("%w: position id and acting user id are required", ErrInvalidInput)
	}

	posting, owner, err := s.getPositionWithSquad(ctx, positionID)
	if err != nil {
		return err
	}
	if owner.CaptainID != actingUserID {
		return fmt.Errorf("%w: only the captain can close positions", ErrForbidden)
	}

	if err := s.positionRepo.Close(ctx, posting.ID); err != nil {
		if errors.Is(err, position.ErrClosed) {
			return fmt.Errorf("%w: position already closed", ErrState)
		}
		return fmt.Errorf("close position: %w", err)
	}

	s.logger.InfoContext(ctx, "position closed", "position_id", positionID, "squad_id", posting.SquadID)

	return nil
}

func (s *PositionService) GetPosition(ctx context.Context, positionID string) (position.Position, error) {
	positionID = strings.TrimSpace(positionID)
	if positionID == "" {
		return position.Position{}, fmt.Errorf("%w: position id is required", ErrInvalidInput)
	}

	posting, exists, err := s.positionRepo.GetByID(ctx, positionID)
	if err != nil {
		return position.Position{}, fmt.Errorf("get position: %w", err)
	}
	if !exists {
		return position.Position{}, fmt.Errorf("%w: position=%s", ErrNotFound, positionID)
	}

	return posting, nil
}

func (s *PositionService) ListOpenPositions(ctx context.Context) ([]position.Position, error) {
	positions, err := s.positionRepo.ListOpen(ctx, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list open positions: %w", err)
	}

	return positions, nil
}

func (s *PositionService) ListSquadPositions(ctx context.Context, squadID string) ([]position.Position, error) {
	squadID = strings.TrimSpace(squadID)
	if squadID == "" {
		return nil, fmt.Errorf("%w: squad id is required", ErrInvalidInput)
	}

	if _, exists, err := s.squadRepo.GetByID(ctx, squadID); err != nil {
		return nil, fmt.Errorf("get squad: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: squad=%s", ErrNotFound, squadID)
	}

	positions, err := s.positionRepo.ListBySquad(ctx, squadID)
	if err != nil {
		return nil, fmt.Errorf("list squad positions: %w", err)
	}

	return positions, nil
}

func (s *PositionService) getPositionWithSquad(ctx context.Context, positionID string) (position.Position, squad.Squad, error) {
	posting, exists, err := s.positionRepo.GetByID(ctx, positionID)
	if err != nil {
		return position.Position{}, squad.Squad{}, fmt.Errorf("get position: %w", err)
	}
	if !exists {
		return position.Position{}, squad.Squad{}, fmt.Errorf("%w: position=%s", ErrNotFound, positionID)
	}

	owner, exists, err := s.squadRepo.GetByID(ctx, posting.SquadID)
	if err != nil {
		return position.Position{}, squad.Squad{}, fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return position.Position{}, squad.Squad{}, fmt.Errorf("%w: squad=%s", ErrNotFound, posting.SquadID)
	}

	return posting, owner, nil
}

func cleanBenefits(benefits []string) []string {
	cleaned := make([]string, 0, len(benefits))
	for _, b := range benefits {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		cleaned = append(cleaned, b)
	}

	return cleaned
}
