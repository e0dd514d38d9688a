package eligibility

import (
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/position"
	"github.com/riskibarqy/squadhub/internal/domain/user"
)

var (
	ErrAlreadyInSquad = errors.New("already in a squad")
	ErrPositionClosed = errors.New("position closed")
	ErrTierTooLow     = errors.New("tier too low")
	ErrAlreadyApplied = errors.New("already applied")
)

// Candidate is the snapshot of a user the rules are evaluated against. The
// caller resolves squad membership, reputation and pending-application state
// before invoking Evaluate; the rules themselves stay pure.
type Candidate struct {
	UserID                string
	SquadID               string
	Tier                  user.Tier
	HasPendingApplication bool
}

// Evaluate applies the recruiting eligibility rules in order. The first
// failing rule wins; nil means the candidate may apply.
func Evaluate(c Candidate, p position.Position, now time.Time) error {
	if c.SquadID != "" {
		return fmt.Errorf("%w: user=%s squad=%s", ErrAlreadyInSquad, c.UserID, c.SquadID)
	}
	if !p.IsOpen || !now.Before(p.ExpiresAt) {
		return fmt.Errorf("%w: position=%s", ErrPositionClosed, p.ID)
	}
	if !c.Tier.AtLeast(p.MinTier) {
		return fmt.Errorf("%w: have=%s need=%s", ErrTierTooLow, c.Tier, p.MinTier)
	}
	if c.HasPendingApplication {
		return fmt.Errorf("%w: position=%s", ErrAlreadyApplied, p.ID)
	}

	return nil
}

// Reason translates an Evaluate error into the short human-readable reason
// surfaced by pre-flight checks. An unrecognized error falls back to its
// message.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyInSquad):
		return "already in a squad"
	case errors.Is(err, ErrPositionClosed):
		return "position closed"
	case errors.Is(err, ErrTierTooLow):
		return "tier too low"
	case errors.Is(err, ErrAlreadyApplied):
		return "already applied"
	default:
		return err.Error()
	}
}
