package position

import (
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/user"
)

var (
	ErrClosed = errors.New("position is closed")
	ErrFilled = errors.New("position has no open slots")
)

// Position is a squad's open recruiting slot with eligibility requirements
// and a slot capacity.
type Position struct {
	ID          string
	SquadID     string
	Role        string
	Benefits    []string
	MinTier     user.Tier
	IsOpen      bool
	Capacity    int
	FilledCount int
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

func (p Position) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("position id is required")
	}
	if p.SquadID == "" {
		return fmt.Errorf("position squad id is required")
	}
	if p.Role == "" {
		return fmt.Errorf("position role is required")
	}
	if p.Capacity < 1 {
		return fmt.Errorf("position capacity must be at least 1")
	}
	if p.FilledCount < 0 || p.FilledCount > p.Capacity {
		return fmt.Errorf("position filled count %d out of range [0,%d]", p.FilledCount, p.Capacity)
	}
	if p.ExpiresAt.IsZero() {
		return fmt.Errorf("position expiry is required")
	}

	return nil
}

// Accepting reports whether the position can still take an approval at the
// given moment. The repository re-checks the same condition at commit time.
func (p Position) Accepting(now time.Time) bool {
	return p.IsOpen && now.Before(p.ExpiresAt) && p.FilledCount < p.Capacity
}
