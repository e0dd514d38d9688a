package invite

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotPending       = errors.New("invite is not pending")
	ErrDuplicatePending = errors.New("a pending invite already exists for this invitee")
	ErrExpired          = errors.New("invite has expired")
	ErrNotExpired       = errors.New("invite has not expired yet")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusExpired  Status = "expired"
	// StatusCancelled is applied to a user's other pending invites when one
	// candidacy wins: a user who just joined a squad cannot stay a candidate
	// elsewhere.
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s != StatusPending
}

// Invite is a captain-initiated request for a user to join a squad directly.
type Invite struct {
	ID        string
	SquadID   string
	InviterID string
	InviteeID string
	Status    Status
	ExpiresAt time.Time
	CreatedAt time.Time
	DecidedAt *time.Time
}

func (i Invite) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("invite id is required")
	}
	if i.SquadID == "" {
		return fmt.Errorf("invite squad id is required")
	}
	if i.InviterID == "" {
		return fmt.Errorf("invite inviter id is required")
	}
	if i.InviteeID == "" {
		return fmt.Errorf("invite invitee id is required")
	}
	if i.InviterID == i.InviteeID {
		return fmt.Errorf("invite inviter and invitee must differ")
	}
	if i.Status == "" {
		return fmt.Errorf("invite status is required")
	}
	if i.ExpiresAt.IsZero() {
		return fmt.Errorf("invite expiry is required")
	}

	return nil
}
