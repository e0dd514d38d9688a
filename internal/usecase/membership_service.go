package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/squad"
	"github.com/riskibarqy/squadhub/internal/domain/user"
	idgen "github.com/riskibarqy/squadhub/internal/platform/id"
)

const maxSquadSize = 50

// CreateSquadInput is the incoming payload for founding a squad.
type CreateSquadInput struct {
	CaptainID string
	Name      string
	MaxSize   int
}

// SquadDetail is a squad together with its current roster.
type SquadDetail struct {
	Squad   squad.Squad
	Members []squad.Member
}

type MembershipService struct {
	squadRepo squad.Repository
	userRepo  user.Repository
	idGen     idgen.Generator
	logger    *slog.Logger
	now       func() time.Time
}

func NewMembershipService(
	squadRepo squad.Repository,
	userRepo user.Repository,
	idGen idgen.Generator,
	logger *slog.Logger,
) *MembershipService {
	if logger == nil {
		logger = slog.Default()
	}

	return &MembershipService{
		squadRepo: squadRepo,
		userRepo:  userRepo,
		idGen:     idGen,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *MembershipService) CreateSquad(ctx context.Context, input CreateSquadInput) (squad.Squad, error) {
	ctx, span := startUsecaseSpan(ctx, "MembershipService.CreateSquad")
	defer span.End()

	input.CaptainID = strings.TrimSpace(input.CaptainID)
	input.Name = strings.TrimSpace(input.Name)

	if input.CaptainID == "" {
		return squad.Squad{}, fmt.Errorf("%w: captain id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return squad.Squad{}, fmt.Errorf("%w: squad name is required", ErrInvalidInput)
	}
	if input.MaxSize < 1 || input.MaxSize > maxSquadSize {
		return squad.Squad{}, fmt.Errorf("%w: max size must be between 1 and %d", ErrInvalidInput, maxSquadSize)
	}

	if _, exists, err := s.userRepo.GetByID(ctx, input.CaptainID); err != nil {
		return squad.Squad{}, fmt.Errorf("get captain: %w", err)
	} else if !exists {
		return squad.Squad{}, fmt.Errorf("%w: user=%s", ErrNotFound, input.CaptainID)
	}

	if _, member, err := s.squadRepo.MemberSquadID(ctx, input.CaptainID); err != nil {
		return squad.Squad{}, fmt.Errorf("check captain membership: %w", err)
	} else if member {
		return squad.Squad{}, fmt.Errorf("%w: user already belongs to a squad", ErrState)
	}

	squadID, err := s.idGen.NewID()
	if err != nil {
		return squad.Squad{}, fmt.Errorf("generate squad id: %w", err)
	}

	now := s.now().UTC()
	newSquad := squad.Squad{
		ID:        squadID,
		Name:      input.Name,
		CaptainID: input.CaptainID,
		MaxSize:   input.MaxSize,
		CreatedAt: now,
	}
	if err := newSquad.Validate(); err != nil {
		return squad.Squad{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	captain := squad.Member{
		SquadID:  squadID,
		UserID:   input.CaptainID,
		Role:     squad.RoleCaptain,
		JoinedAt: now,
	}
	if err := s.squadRepo.Create(ctx, newSquad, captain); err != nil {
		if errors.Is(err, squad.ErrAlreadyMember) {
			return squad.Squad{}, fmt.Errorf("%w: user already belongs to a squad", ErrState)
		}
		return squad.Squad{}, fmt.Errorf("create squad: %w", err)
	}

	s.logger.InfoContext(ctx, "squad created",
		"squad_id", squadID,
		"captain_id", input.CaptainID,
		"max_size", input.MaxSize,
	)

	return newSquad, nil
}

func (s *MembershipService) GetSquad(ctx context.Context, squadID string) (SquadDetail, error) {
	squadID = strings.TrimSpace(squadID)
	if squadID == "" {
		return SquadDetail{}, fmt.Errorf("%w: squad id is required", ErrInvalidInput)
	}

	found, exists, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return SquadDetail{}, fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return SquadDetail{}, fmt.Errorf("%w: squad=%s", ErrNotFound, squadID)
	}

	members, err := s.squadRepo.ListMembers(ctx, squadID)
	if err != nil {
		return SquadDetail{}, fmt.Errorf("list squad members: %w", err)
	}

	return SquadDetail{Squad: found, Members: members}, nil
}

// GetMySquad resolves the caller's squad, if any.
func (s *MembershipService) GetMySquad(ctx context.Context, userID string) (SquadDetail, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return SquadDetail{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	squadID, member, err := s.squadRepo.MemberSquadID(ctx, userID)
	if err != nil {
		return SquadDetail{}, fmt.Errorf("resolve membership: %w", err)
	}
	if !member {
		return SquadDetail{}, fmt.Errorf("%w: user has no squad", ErrNotFound)
	}

	return s.GetSquad(ctx, squadID)
}

func (s *MembershipService) LeaveSquad(ctx context.Context, squadID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "MembershipService.LeaveSquad")
	defer span.End()

	squadID = strings.TrimSpace(squadID)
	userID = strings.TrimSpace(userID)
	if squadID == "" || userID == "" {
		return fmt.Errorf("%w: squad id and user id are required", ErrInvalidInput)
	}

	if _, exists, err := s.squadRepo.GetByID(ctx, squadID); err != nil {
		return fmt.Errorf("get squad: %w", err)
	} else if !exists {
		return fmt.Errorf("%w: squad=%s", ErrNotFound, squadID)
	}

	if err := s.squadRepo.RemoveMember(ctx, squadID, userID); err != nil {
		switch {
		case errors.Is(err, squad.ErrNotMember):
			return fmt.Errorf("%w: user is not a member of the squad", ErrNotFound)
		case errors.Is(err, squad.ErrCaptainCannotLeave):
			return fmt.Errorf("%w: captain must transfer before leaving", ErrState)
		default:
			return fmt.Errorf("remove member: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "member left squad", "squad_id", squadID, "user_id", userID)

	return nil
}

func (s *MembershipService) TransferCaptaincy(ctx context.Context, squadID, actingUserID, newCaptainID string) error {
	ctx, span := startUsecaseSpan(ctx, "MembershipService.TransferCaptaincy")
	defer span.End()

	squadID = strings.TrimSpace(squadID)
	actingUserID = strings.TrimSpace(actingUserID)
	newCaptainID = strings.TrimSpace(newCaptainID)
	if squadID == "" || actingUserID == "" || newCaptainID == "" {
		return fmt.Errorf("%w: squad id, acting user id and new captain id are required", ErrInvalidInput)
	}
	if actingUserID == newCaptainID {
		return fmt.Errorf("%w: new captain must differ from the current captain", ErrInvalidInput)
	}

	found, exists, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: squad=%s", ErrNotFound, squadID)
	}
	if found.CaptainID != actingUserID {
		return fmt.Errorf("%w: only the captain can transfer captaincy", ErrForbidden)
	}

	if _, member, err := s.squadRepo.GetMember(ctx, squadID, newCaptainID); err != nil {
		return fmt.Errorf("get new captain membership: %w", err)
	} else if !member {
		return fmt.Errorf("%w: new captain is not a member of the squad", ErrInvalidInput)
	}

	if err := s.squadRepo.TransferCaptaincy(ctx, squadID, actingUserID, newCaptainID, s.now().UTC()); err != nil {
		if errors.Is(err, squad.ErrNotMember) {
			return fmt.Errorf("%w: new captain is not a member of the squad", ErrInvalidInput)
		}
		return fmt.Errorf("transfer captaincy: %w", err)
	}

	s.logger.InfoContext(ctx, "captaincy transferred",
		"squad_id", squadID,
		"from_user_id", actingUserID,
		"to_user_id", newCaptainID,
	)

	return nil
}
