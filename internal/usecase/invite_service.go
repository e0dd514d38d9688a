package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/invite"
	"github.com/riskibarqy/squadhub/internal/domain/notification"
	"github.com/riskibarqy/squadhub/internal/domain/squad"
	"github.com/riskibarqy/squadhub/internal/domain/user"
	idgen "github.com/riskibarqy/squadhub/internal/platform/id"
)

const defaultInviteTTL = 7 * 24 * time.Hour

type InviteService struct {
	inviteRepo invite.Repository
	squadRepo  squad.Repository
	userRepo   user.Repository
	notifier   *Notifier
	idGen      idgen.Generator
	logger     *slog.Logger
	now        func() time.Time
}

func NewInviteService(
	inviteRepo invite.Repository,
	squadRepo squad.Repository,
	userRepo user.Repository,
	notifier *Notifier,
	idGen idgen.Generator,
	logger *slog.Logger,
) *InviteService {
	if logger == nil {
		logger = slog.Default()
	}

	return &InviteService{
		inviteRepo: inviteRepo,
		squadRepo:  squadRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *InviteService) SendInvite(ctx context.Context, squadID, inviterID, inviteeID string) (invite.Invite, error) {
	ctx, span := startUsecaseSpan(ctx, "InviteService.SendInvite")
	defer span.End()

	squadID = strings.TrimSpace(squadID)
	inviterID = strings.TrimSpace(inviterID)
	inviteeID = strings.TrimSpace(inviteeID)
	if squadID == "" || inviterID == "" || inviteeID == "" {
		return invite.Invite{}, fmt.Errorf("%w: squad id, inviter id and invitee id are required", ErrInvalidInput)
	}
	if inviterID == inviteeID {
		return invite.Invite{}, fmt.Errorf("%w: cannot invite yourself", ErrInvalidInput)
	}

	owner, exists, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return invite.Invite{}, fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return invite.Invite{}, fmt.Errorf("%w: squad=%s", ErrNotFound, squadID)
	}
	if owner.CaptainID != inviterID {
		return invite.Invite{}, fmt.Errorf("%w: only the captain can send invites", ErrForbidden)
	}

	if _, exists, err := s.userRepo.GetByID(ctx, inviteeID); err != nil {
		return invite.Invite{}, fmt.Errorf("get invitee: %w", err)
	} else if !exists {
		return invite.Invite{}, fmt.Errorf("%w: user=%s", ErrNotFound, inviteeID)
	}

	if _, member, err := s.squadRepo.MemberSquadID(ctx, inviteeID); err != nil {
		return invite.Invite{}, fmt.Errorf("resolve invitee membership: %w", err)
	} else if member {
		return invite.Invite{}, fmt.Errorf("%w: invitee already belongs to a squad", ErrState)
	}

	inviteID, err := s.idGen.NewID()
	if err != nil {
		return invite.Invite{}, fmt.Errorf("generate invite id: %w", err)
	}

	now := s.now().UTC()
	record := invite.Invite{
		ID:        inviteID,
		SquadID:   squadID,
		InviterID: inviterID,
		InviteeID: inviteeID,
		Status:    invite.StatusPending,
		ExpiresAt: now.Add(defaultInviteTTL),
		CreatedAt: now,
	}
	if err := record.Validate(); err != nil {
		return invite.Invite{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	if err := s.inviteRepo.Create(ctx, record); err != nil {
		if errors.Is(err, invite.ErrDuplicatePending) {
			return invite.Invite{}, fmt.Errorf("%w: a pending invite already exists for this invitee", ErrState)
		}
		return invite.Invite{}, fmt.Errorf("create invite: %w", err)
	}

	s.logger.InfoContext(ctx, "invite sent",
		"invite_id", inviteID,
		"squad_id", squadID,
		"invitee_id", inviteeID,
	)

	s.notifier.Emit(ctx, inviteeID, notification.KindInviteReceived, map[string]any{
		"invite_id": inviteID,
		"squad_id":  squadID,
	})

	return record, nil
}

func (s *InviteService) Accept(ctx context.Context, inviteID, actingUserID string) (invite.Invite, error) {
	ctx, span := startUsecaseSpan(ctx, "InviteService.Accept")
	defer span.End()

	record, err := s.loadInviteForActor(ctx, inviteID, actingUserID)
	if err != nil {
		return invite.Invite{}, err
	}
	if record.Status != invite.StatusPending {
		return invite.Invite{}, fmt.Errorf("%w: invite is %s", ErrState, record.Status)
	}

	now := s.now().UTC()
	if !now.Before(record.ExpiresAt) {
		return invite.Invite{}, fmt.Errorf("%w: invite has expired", ErrState)
	}

	owner, exists, err := s.squadRepo.GetByID(ctx, record.SquadID)
	if err != nil {
		return invite.Invite{}, fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return invite.Invite{}, fmt.Errorf("%w: squad=%s", ErrNotFound, record.SquadID)
	}

	outcome, err := s.inviteRepo.Accept(ctx, invite.AcceptCommand{
		InviteID:     record.ID,
		SquadID:      owner.ID,
		InviteeID:    record.InviteeID,
		SquadMaxSize: owner.MaxSize,
		DecidedAt:    now,
	})
	if err != nil {
		switch {
		case errors.Is(err, invite.ErrNotPending):
			return invite.Invite{}, fmt.Errorf("%w: invite already decided", ErrState)
		case errors.Is(err, invite.ErrExpired):
			return invite.Invite{}, fmt.Errorf("%w: invite has expired", ErrState)
		case errors.Is(err, squad.ErrFull):
			return invite.Invite{}, fmt.Errorf("%w: squad is full", ErrCapacity)
		case errors.Is(err, squad.ErrAlreadyMember):
			return invite.Invite{}, fmt.Errorf("%w: invitee already belongs to a squad", ErrState)
		default:
			return invite.Invite{}, fmt.Errorf("accept invite: %w", err)
		}
	}

	record.Status = invite.StatusAccepted
	record.DecidedAt = &now

	s.logger.InfoContext(ctx, "invite accepted",
		"invite_id", record.ID,
		"squad_id", owner.ID,
		"invitee_id", record.InviteeID,
		"cancelled_invites", len(outcome.CancelledInviteIDs),
		"withdrawn_applications", len(outcome.WithdrawnApplicationIDs),
	)

	s.notifier.Emit(ctx, record.InviterID, notification.KindInviteAccepted, map[string]any{
		"invite_id": record.ID,
		"squad_id":  owner.ID,
	})
	for _, cancelledID := range outcome.CancelledInviteIDs {
		s.notifier.Emit(ctx, record.InviteeID, notification.KindInviteCancelled, map[string]any{
			"invite_id": cancelledID,
		})
	}
	for _, withdrawnID := range outcome.WithdrawnApplicationIDs {
		s.notifier.Emit(ctx, record.InviteeID, notification.KindApplicationWithdrawn, map[string]any{
			"application_id": withdrawnID,
		})
	}

	return record, nil
}

func (s *InviteService) Decline(ctx context.Context, inviteID, actingUserID string) (invite.Invite, error) {
	ctx, span := startUsecaseSpan(ctx, "InviteService.Decline")
	defer span.End()

	record, err := s.loadInviteForActor(ctx, inviteID, actingUserID)
	if err != nil {
		return invite.Invite{}, err
	}
	if record.Status != invite.StatusPending {
		return invite.Invite{}, fmt.Errorf("%w: invite is %s", ErrState, record.Status)
	}

	now := s.now().UTC()
	if err := s.inviteRepo.UpdateStatusFromPending(ctx, record.ID, invite.StatusDeclined, now); err != nil {
		if errors.Is(err, invite.ErrNotPending) {
			return invite.Invite{}, fmt.Errorf("%w: invite already decided", ErrState)
		}
		return invite.Invite{}, fmt.Errorf("decline invite: %w", err)
	}

	record.Status = invite.StatusDeclined
	record.DecidedAt = &now

	s.logger.InfoContext(ctx, "invite declined", "invite_id", record.ID, "invitee_id", record.InviteeID)

	s.notifier.Emit(ctx, record.InviterID, notification.KindInviteDeclined, map[string]any{
		"invite_id": record.ID,
		"squad_id":  record.SquadID,
	})

	return record, nil
}

// Cancel revokes a pending invite. Only the inviting squad's captain may
// cancel it.
func (s *InviteService) Cancel(ctx context.Context, inviteID, actingUserID string) (invite.Invite, error) {
	ctx, span := startUsecaseSpan(ctx, "InviteService.Cancel")
	defer span.End()

	inviteID = strings.TrimSpace(inviteID)
	actingUserID = strings.TrimSpace(actingUserID)
	if inviteID == "" || actingUserID == "" {
		return invite.Invite{}, fmt.Errorf("%w: invite id and acting user id are required", ErrInvalidInput)
	}

	record, exists, err := s.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		return invite.Invite{}, fmt.Errorf("get invite: %w", err)
	}
	if !exists {
		return invite.Invite{}, fmt.Errorf("%w: invite=%s", ErrNotFound, inviteID)
	}

	owner, exists, err := s.squadRepo.GetByID(ctx, record.SquadID)
	if err != nil {
		return invite.Invite{}, fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return invite.Invite{}, fmt.Errorf("%w: squad=%s", ErrNotFound, record.SquadID)
	}
	if owner.CaptainID != actingUserID {
		return invite.Invite{}, fmt.Errorf("%w: only the captain can cancel invites", ErrForbidden)
	}
	if record.Status != invite.StatusPending {
		return invite.Invite{}, fmt.Errorf("%w: invite is %s", ErrState, record.Status)
	}

	now := s.now().UTC()
	if err := s.inviteRepo.UpdateStatusFromPending(ctx, record.ID, invite.StatusCancelled, now); err != nil {
		if errors.Is(err, invite.ErrNotPending) {
			return invite.Invite{}, fmt.Errorf("%w: invite already decided", ErrState)
		}
		return invite.Invite{}, fmt.Errorf("cancel invite: %w", err)
	}

	record.Status = invite.StatusCancelled
	record.DecidedAt = &now

	s.logger.InfoContext(ctx, "invite cancelled", "invite_id", record.ID, "squad_id", record.SquadID)

	s.notifier.Emit(ctx, record.InviteeID, notification.KindInviteCancelled, map[string]any{
		"invite_id": record.ID,
		"squad_id":  record.SquadID,
	})

	return record, nil
}

func (s *InviteService) ListMyInvites(ctx context.Context, inviteeID string) ([]invite.Invite, error) {
	inviteeID = strings.TrimSpace(inviteeID)
	if inviteeID == "" {
		return nil, fmt.Errorf("%w: invitee id is required", ErrInvalidInput)
	}

	records, err := s.inviteRepo.ListByInvitee(ctx, inviteeID)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}

	return records, nil
}

func (s *InviteService) ListSquadInvites(ctx context.Context, squadID, actingUserID string) ([]invite.Invite, error) {
	squadID = strings.TrimSpace(squadID)
	actingUserID = strings.TrimSpace(actingUserID)
	if squadID == "" || actingUserID == "" {
		return nil, fmt.Errorf("%w: squad id and acting user id are required", ErrInvalidInput)
	}

	owner, exists, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return nil, fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: squad=%s", ErrNotFound, squadID)
	}
	if owner.CaptainID != actingUserID {
		return nil, fmt.Errorf("%w: only the captain can list squad invites", ErrForbidden)
	}

	records, err := s.inviteRepo.ListBySquad(ctx, squadID)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}

	return records, nil
}

func (s *InviteService) loadInviteForActor(ctx context.Context, inviteID, actingUserID string) (invite.Invite, error) {
	inviteID = strings.TrimSpace(inviteID)
	actingUserID = strings.TrimSpace(actingUserID)
	if inviteID == "" || actingUserID == "" {
		return invite.Invite{}, fmt.Errorf("%w: invite id and acting user id are required", ErrInvalidInput)
	}

	record, exists, err := s.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		return invite.Invite{}, fmt.Errorf("get invite: %w", err)
	}
	if !exists {
		return invite.Invite{}, fmt.Errorf("%w: invite=%s", ErrNotFound, inviteID)
	}
	if record.InviteeID != actingUserID {
		return invite.Invite{}, fmt.Errorf("%w: only the invitee can act on this invite", ErrForbidden)
	}

	return record, nil
}
