package application

import (
	"context"
	"time"
)

// ApproveCommand carries everything the repository needs to commit an
// approval as one atomic unit: the pending-status check, the position slot
// reservation, and the squad membership insert all happen in the same
// transaction or not at all.
type ApproveCommand struct {
	ApplicationID string
	PositionID    string
	SquadID       string
	ApplicantID   string
	SquadMaxSize  int
	DecidedAt     time.Time
}

// ApproveOutcome reports what the committed approval did to the position.
type ApproveOutcome struct {
	FilledCount    int
	PositionClosed bool
}

// Repository describes application persistence needs from use cases.
type Repository interface {
	// Create inserts a pending application. Returns ErrDuplicatePending when a
	// pending row already exists for the (position, applicant) pair.
	Create(ctx context.Context, a Application) error
	GetByID(ctx context.Context, applicationID string) (Application, bool, error)
	ListByPosition(ctx context.Context, positionID string) ([]Application, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]Application, error)
	HasPending(ctx context.Context, positionID, applicantID string) (bool, error)
	// UpdateStatusFromPending moves a pending application to a terminal state.
	// Returns ErrNotPending when the row already left pending.
	UpdateStatusFromPending(ctx context.Context, applicationID string, to Status, decidedAt time.Time) error
	// Expire moves a past-due pending application to expired. Returns
	// ErrNotPending when the row already left pending and ErrNotExpired when
	// the deadline is still in the future at commit time.
	Expire(ctx context.Context, applicationID string, now time.Time) error
	// Approve commits the full approval transaction. Guard failures surface as
	// ErrNotPending, position.ErrClosed, position.ErrFilled, squad.ErrFull or
	// squad.ErrAlreadyMember, and leave the application pending.
	Approve(ctx context.Context, cmd ApproveCommand) (ApproveOutcome, error)
	// ListExpiredPending returns pending applications past their expiry for
	// the sweeper. The expire transition re-checks status at commit.
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]Application, error)
}
