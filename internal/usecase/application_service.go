package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/application"
	"github.com/riskibarqy/squadhub/internal/domain/eligibility"
	"github.com/riskibarqy/squadhub/internal/domain/notification"
	"github.com/riskibarqy/squadhub/internal/domain/position"
	"github.com/riskibarqy/squadhub/internal/domain/squad"
	"github.com/riskibarqy/squadhub/internal/domain/user"
	idgen "github.com/riskibarqy/squadhub/internal/platform/id"
)

// EligibilityResult is the pre-flight answer surfaced to clients before they
// submit an application.
type EligibilityResult struct {
	Eligible bool
	Reason   string
}

// ApproveResult reports what an approval committed, including whether it
// filled the position's last slot.
type ApproveResult struct {
	Application    application.Application
	FilledCount    int
	PositionClosed bool
}

type ApplicationService struct {
	applicationRepo application.Repository
	positionRepo    position.Repository
	squadRepo       squad.Repository
	userRepo        user.Repository
	notifier        *Notifier
	idGen           idgen.Generator
	logger          *slog.Logger
	now             func() time.Time
}

func NewApplicationService(
	applicationRepo application.Repository,
	positionRepo position.Repository,
	squadRepo squad.Repository,
	userRepo user.Repository,
	notifier *Notifier,
	idGen idgen.Generator,
	logger *slog.Logger,
) *ApplicationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ApplicationService{
		applicationRepo: applicationRepo,
		positionRepo:    positionRepo,
		squadRepo:       squadRepo,
		userRepo:        userRepo,
		notifier:        notifier,
		idGen:           idGen,
		logger:          logger,
		now:             time.Now,
	}
}

// CheckEligibility runs the recruiting rules without mutating anything, for
// pre-flight UI checks. Apply runs the same rules again before creating.
func (s *ApplicationService) CheckEligibility(ctx context.Context, positionID, userID string) (EligibilityResult, error) {
	positionID = strings.TrimSpace(positionID)
	userID = strings.TrimSpace(userID)
	if positionID == "" || userID == "" {
		return EligibilityResult{}, fmt.Errorf("%w: position id and user id are required", ErrInvalidInput)
	}

	posting, exists, err := s.positionRepo.GetByID(ctx, positionID)
	if err != nil {
		return EligibilityResult{}, fmt.Errorf("get position: %w", err)
	}
	if !exists {
		return EligibilityResult{}, fmt.Errorf("%w: position=%s", ErrNotFound, positionID)
	}

	candidate, err := s.buildCandidate(ctx, userID, positionID)
	if err != nil {
		return EligibilityResult{}, err
	}

	if err := eligibility.Evaluate(candidate, posting, s.now().UTC()); err != nil {
		return EligibilityResult{Eligible: false, Reason: eligibility.Reason(err)}, nil
	}

	return EligibilityResult{Eligible: true}, nil
}

func (s *ApplicationService) Apply(ctx context.Context, positionID, applicantID string) (application.Application, error) {
	ctx, span := startUsecaseSpan(ctx, "ApplicationService.Apply")
	defer span.End()

	positionID = strings.TrimSpace(positionID)
	applicantID = strings.TrimSpace(applicantID)
	if positionID == "" || applicantID == "" {
		return application.Application{}, fmt.Errorf("%w: position id and applicant id are required", ErrInvalidInput)
	}

	posting, exists, err := s.positionRepo.GetByID(ctx, positionID)
	if err != nil {
		return application.Application{}, fmt.Errorf("get position: %w", err)
	}
	if !exists {
		return application.Application{}, fmt.Errorf("%w: position=%s", ErrNotFound, positionID)
	}

	candidate, err := s.buildCandidate(ctx, applicantID, positionID)
	if err != nil {
		return application.Application{}, err
	}
	if err := eligibility.Evaluate(candidate, posting, s.now().UTC()); err != nil {
		return application.Application{}, mapEligibilityError(err)
	}

	applicationID, err := s.idGen.NewID()
	if err != nil {
		return application.Application{}, fmt.Errorf("generate application id: %w", err)
	}

	now := s.now().UTC()
	record := application.Application{
		ID:          applicationID,
		PositionID:  positionID,
		ApplicantID: applicantID,
		Status:      application.StatusPending,
		ExpiresAt:   posting.ExpiresAt,
		CreatedAt:   now,
	}
	if err := record.Validate(); err != nil {
		return application.Application{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	if err := s.applicationRepo.Create(ctx, record); err != nil {
		if errors.Is(err, application.ErrDuplicatePending) {
			return application.Application{}, fmt.Errorf("%w: already applied to this position", ErrInvalidInput)
		}
		return application.Application{}, fmt.Errorf("create application: %w", err)
	}

	s.logger.InfoContext(ctx, "application submitted",
		"application_id", applicationID,
		"position_id", positionID,
		"applicant_id", applicantID,
	)

	if owner, exists, err := s.squadRepo.GetByID(ctx, posting.SquadID); err == nil && exists {
		s.notifier.Emit(ctx, owner.CaptainID, notification.KindApplicationReceived, map[string]any{
			"application_id": applicationID,
			"position_id":    positionID,
			"applicant_id":   applicantID,
		})
	}

	return record, nil
}

func (s *ApplicationService) Approve(ctx context.Context, applicationID, actingUserID string) (ApproveResult, error) {
	ctx, span := startUsecaseSpan(ctx, "ApplicationService.Approve")
	defer span.End()

	record, posting, owner, err := s.loadDecisionContext(ctx, applicationID, actingUserID)
	if err != nil {
		return ApproveResult{}, err
	}
	if record.Status != application.StatusPending {
		return ApproveResult{}, fmt.Errorf("%w: application is %s", ErrState, record.Status)
	}
	now := s.now().UTC()
	if !posting.Accepting(now) {
		return ApproveResult{}, fmt.Errorf("%w: position closed", ErrState)
	}

	outcome, err := s.applicationRepo.Approve(ctx, application.ApproveCommand{
		ApplicationID: record.ID,
		PositionID:    posting.ID,
		SquadID:       owner.ID,
		ApplicantID:   record.ApplicantID,
		SquadMaxSize:  owner.MaxSize,
		DecidedAt:     now,
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNotPending):
			return ApproveResult{}, fmt.Errorf("%w: application already decided", ErrState)
		case errors.Is(err, position.ErrClosed), errors.Is(err, position.ErrFilled):
			return ApproveResult{}, fmt.Errorf("%w: position closed", ErrState)
		case errors.Is(err, squad.ErrFull):
			return ApproveResult{}, fmt.Errorf("%w: squad is full", ErrCapacity)
		case errors.Is(err, squad.ErrAlreadyMember):
			return ApproveResult{}, fmt.Errorf("%w: applicant already belongs to a squad", ErrState)
		default:
			return ApproveResult{}, fmt.Errorf("approve application: %w", err)
		}
	}

	record.Status = application.StatusApproved
	record.DecidedAt = &now

	s.logger.InfoContext(ctx, "application approved",
		"application_id", record.ID,
		"position_id", posting.ID,
		"squad_id", owner.ID,
		"filled_count", outcome.FilledCount,
		"position_closed", outcome.PositionClosed,
	)

	s.notifier.Emit(ctx, record.ApplicantID, notification.KindApplicationApproved, map[string]any{
		"application_id": record.ID,
		"position_id":    posting.ID,
		"squad_id":       owner.ID,
	})

	return ApproveResult{
		Application:    record,
		FilledCount:    outcome.FilledCount,
		PositionClosed: outcome.PositionClosed,
	}, nil
}

func (s *ApplicationService) Reject(ctx context.Context, applicationID, actingUserID string) (application.Application, error) {
	ctx, span := startUsecaseSpan(ctx, "ApplicationService.Reject")
	defer span.End()

	record, posting, _, err := s.loadDecisionContext(ctx, applicationID, actingUserID)
	if err != nil {
		return application.Application{}, err
	}
	if record.Status != application.StatusPending {
		return application.Application{}, fmt.Errorf("%w: application is %s", ErrState, record.Status)
	}

	now := s.now().UTC()
	if err := s.applicationRepo.UpdateStatusFromPending(ctx, record.ID, application.StatusRejected, now); err != nil {
		if errors.Is(err, application.ErrNotPending) {
			return application.Application{}, fmt.Errorf("%w: application already decided", ErrState)
		}
		return application.Application{}, fmt.Errorf("reject application: %w", err)
	}

	record.Status = application.StatusRejected
	record.DecidedAt = &now

	s.logger.InfoContext(ctx, "application rejected",
		"application_id", record.ID,
		"position_id", posting.ID,
	)

	s.notifier.Emit(ctx, record.ApplicantID, notification.KindApplicationRejected, map[string]any{
		"application_id": record.ID,
		"position_id":    posting.ID,
	})

	return record, nil
}

func (s *ApplicationService) Withdraw(ctx context.Context, applicationID, actingUserID string) (application.Application, error) {
	ctx, span := startUsecaseSpan(ctx, "ApplicationService.Withdraw")
	defer span.End()

	applicationID = strings.TrimSpace(applicationID)
	actingUserID = strings.TrimSpace(actingUserID)
	if applicationID == "" || actingUserID == "" {
		return application.Application{}, fmt.Errorf("%w: application id and acting user id are required", ErrInvalidInput)
	}

	record, exists, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return application.Application{}, fmt.Errorf("get application: %w", err)
	}
	if !exists {
		return application.Application{}, fmt.Errorf("%w: application=%s", ErrNotFound, applicationID)
	}
	if record.ApplicantID != actingUserID {
		return application.Application{}, fmt.Errorf("%w: only the applicant can withdraw", ErrForbidden)
	}
	if record.Status != application.StatusPending {
		return application.Application{}, fmt.Errorf("%w: application is %s", ErrState, record.Status)
	}

	now := s.now().UTC()
	if err := s.applicationRepo.UpdateStatusFromPending(ctx, record.ID, application.StatusWithdrawn, now); err != nil {
		if errors.Is(err, application.ErrNotPending) {
			return application.Application{}, fmt.Errorf("%w: application already decided", ErrState)
		}
		return application.Application{}, fmt.Errorf("withdraw application: %w", err)
	}

	record.Status = application.StatusWithdrawn
	record.DecidedAt = &now

	s.logger.InfoContext(ctx, "application withdrawn",
		"application_id", record.ID,
		"applicant_id", actingUserID,
	)

	return record, nil
}

// ListPositionApplications returns a position's applications to its captain.
func (s *ApplicationService) ListPositionApplications(ctx context.Context, positionID, actingUserID string) ([]application.Application, error) {
	positionID = strings.TrimSpace(positionID)
	actingUserID = strings.TrimSpace(actingUserID)
	if positionID == "" || actingUserID == "" {
		return nil, fmt.Errorf("%w: position id and acting user id are required", ErrInvalidInput)
	}

	posting, exists, err := s.positionRepo.GetByID(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("get position: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: position=%s", ErrNotFound, positionID)
	}

	owner, exists, err := s.squadRepo.GetByID(ctx, posting.SquadID)
	if err != nil {
		return nil, fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: squad=%s", ErrNotFound, posting.SquadID)
	}
	if owner.CaptainID != actingUserID {
		return nil, fmt.Errorf("%w: only the captain can review applications", ErrForbidden)
	}

	records, err := s.applicationRepo.ListByPosition(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	return records, nil
}

func (s *ApplicationService) ListMyApplications(ctx context.Context, applicantID string) ([]application.Application, error) {
	applicantID = strings.TrimSpace(applicantID)
	if applicantID == "" {
		return nil, fmt.Errorf("%w: applicant id is required", ErrInvalidInput)
	}

	records, err := s.applicationRepo.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	return records, nil
}

func (s *ApplicationService) buildCandidate(ctx context.Context, userID, positionID string) (eligibility.Candidate, error) {
	account, exists, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return eligibility.Candidate{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return eligibility.Candidate{}, fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}

	squadID, member, err := s.squadRepo.MemberSquadID(ctx, userID)
	if err != nil {
		return eligibility.Candidate{}, fmt.Errorf("resolve membership: %w", err)
	}
	if !member {
		squadID = ""
	}

	hasPending, err := s.applicationRepo.HasPending(ctx, positionID, userID)
	if err != nil {
		return eligibility.Candidate{}, fmt.Errorf("check pending application: %w", err)
	}

	return eligibility.Candidate{
		UserID:                userID,
		SquadID:               squadID,
		Tier:                  account.Reputation.Tier,
		HasPendingApplication: hasPending,
	}, nil
}

func (s *ApplicationService) loadDecisionContext(ctx context.Context, applicationID, actingUserID string) (application.Application, position.Position, squad.Squad, error) {
	applicationID = strings.TrimSpace(applicationID)
	actingUserID = strings.TrimSpace(actingUserID)
	if applicationID == "" || actingUserID == "" {
		return application.Application{}, position.Position{}, squad.Squad{},
			fmt.Errorf("%w: application id and acting user id are required", ErrInvalidInput)
	}

	record, exists, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return application.Application{}, position.Position{}, squad.Squad{}, fmt.Errorf("get application: %w", err)
	}
	if !exists {
		return application.Application{}, position.Position{}, squad.Squad{},
			fmt.Errorf("%w: application=%s", ErrNotFound, applicationID)
	}

	posting, exists, err := s.positionRepo.GetByID(ctx, record.PositionID)
	if err != nil {
		return application.Application{}, position.Position{}, squad.Squad{}, fmt.Errorf("get position: %w", err)
	}
	if !exists {
		return application.Application{}, position.Position{}, squad.Squad{},
			fmt.Errorf("%w: position=%s", ErrNotFound, record.PositionID)
	}

	owner, exists, err := s.squadRepo.GetByID(ctx, posting.SquadID)
	if err != nil {
		return application.Application{}, position.Position{}, squad.Squad{}, fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return application.Application{}, position.Position{}, squad.Squad{},
			fmt.Errorf("%w: squad=%s", ErrNotFound, posting.SquadID)
	}
	if owner.CaptainID != actingUserID {
		return application.Application{}, position.Position{}, squad.Squad{},
			fmt.Errorf("%w: only the captain can decide applications", ErrForbidden)
	}

	return record, posting, owner, nil
}

func mapEligibilityError(err error) error {
	switch {
	case errors.Is(err, eligibility.ErrAlreadyInSquad):
		return fmt.Errorf("%w: already in a squad", ErrState)
	case errors.Is(err, eligibility.ErrPositionClosed):
		return fmt.Errorf("%w: position closed", ErrState)
	case errors.Is(err, eligibility.ErrTierTooLow):
		return fmt.Errorf("%w: tier too low", ErrInvalidInput)
	case errors.Is(err, eligibility.ErrAlreadyApplied):
		return fmt.Errorf("%w: already applied", ErrInvalidInput)
	default:
		return fmt.Errorf("evaluate eligibility: %w", err)
	}
}
