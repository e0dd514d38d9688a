package application

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotPending       = errors.New("application is not pending")
	ErrDuplicatePending = errors.New("a pending application already exists for this position")
	ErrNotExpired       = errors.New("application has not expired yet")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
	StatusExpired   Status = "expired"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// Application is a user-initiated request to fill a position. It transitions
// exactly once out of pending and is never resurrected.
type Application struct {
	ID          string
	PositionID  string
	ApplicantID string
	Status      Status
	// ExpiresAt is inherited from the position at apply time so the sweeper
	// can scan applications without joining positions.
	ExpiresAt time.Time
	CreatedAt time.Time
	DecidedAt *time.Time
}

func (a Application) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("application id is required")
	}
	if a.PositionID == "" {
		return fmt.Errorf("application position id is required")
	}
	if a.ApplicantID == "" {
		return fmt.Errorf("application applicant id is required")
	}
	if a.Status == "" {
		return fmt.Errorf("application status is required")
	}

	return nil
}
