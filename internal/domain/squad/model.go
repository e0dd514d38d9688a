package squad

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrFull               = errors.New("squad is full")
	ErrAlreadyMember      = errors.New("user already belongs to a squad")
	ErrNotMember          = errors.New("user is not a member of the squad")
	ErrCaptainCannotLeave = errors.New("captain must transfer before leaving")
)

type Role string

const (
	RoleCaptain Role = "captain"
	RoleMember  Role = "member"
)

// Squad is a fixed-capacity group with exactly one captain.
type Squad struct {
	ID        string
	Name      string
	CaptainID string
	MaxSize   int
	CreatedAt time.Time
}

func (s Squad) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("squad id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("squad name is required")
	}
	if s.CaptainID == "" {
		return fmt.Errorf("squad captain id is required")
	}
	if s.MaxSize < 1 {
		return fmt.Errorf("squad max size must be at least 1")
	}

	return nil
}

// Member is one (squad, user) membership row. A user appears in at most one
// squad system-wide.
type Member struct {
	SquadID  string
	UserID   string
	Role     Role
	JoinedAt time.Time
}
