package invite

import (
	"context"
	"time"
)

// AcceptCommand carries everything the repository needs to commit an
// acceptance atomically: the pending-status check, the squad seat
// reservation, the membership insert, and the cancellation of the invitee's
// other open candidacies.
type AcceptCommand struct {
	InviteID     string
	SquadID      string
	InviteeID    string
	SquadMaxSize int
	DecidedAt    time.Time
}

// AcceptOutcome lists the other candidacies voided by the acceptance so the
// service can emit notifications for them.
type AcceptOutcome struct {
	CancelledInviteIDs      []string
	WithdrawnApplicationIDs []string
}

// Repository describes invite persistence needs from use cases.
type Repository interface {
	// Create inserts a pending invite. Returns ErrDuplicatePending when a
	// pending row already exists for the (squad, invitee) pair.
	Create(ctx context.Context, i Invite) error
	GetByID(ctx context.Context, inviteID string) (Invite, bool, error)
	ListByInvitee(ctx context.Context, inviteeID string) ([]Invite, error)
	ListBySquad(ctx context.Context, squadID string) ([]Invite, error)
	// UpdateStatusFromPending moves a pending invite to a terminal state.
	// Returns ErrNotPending when the row already left pending.
	UpdateStatusFromPending(ctx context.Context, inviteID string, to Status, decidedAt time.Time) error
	// Expire moves a past-due pending invite to expired. Returns ErrNotPending
	// when the row already left pending and ErrNotExpired when the deadline is
	// still in the future at commit time.
	Expire(ctx context.Context, inviteID string, now time.Time) error
	// Accept commits the full acceptance transaction. Guard failures surface
	// as ErrNotPending, ErrExpired, squad.ErrFull or squad.ErrAlreadyMember,
	// and leave the invite pending.
	Accept(ctx context.Context, cmd AcceptCommand) (AcceptOutcome, error)
	// ListExpiredPending returns pending invites past their expiry for the
	// sweeper. The expire transition re-checks status at commit.
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]Invite, error)
}
