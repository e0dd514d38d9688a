package user

import (
	"fmt"
	"strings"
	"time"
)

// Tier is the ordered reputation tier assigned by the reputation provider.
// Comparison follows declaration order: Bronze < Silver < Gold < Platinum.
type Tier int

const (
	TierUnknown Tier = iota
	TierBronze
	TierSilver
	TierGold
	TierPlatinum
)

var tierNames = map[Tier]string{
	TierBronze:   "bronze",
	TierSilver:   "silver",
	TierGold:     "gold",
	TierPlatinum: "platinum",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "unknown"
}

// AtLeast reports whether t satisfies a minimum tier requirement.
func (t Tier) AtLeast(min Tier) bool {
	return t >= min
}

func ParseTier(raw string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "bronze":
		return TierBronze, nil
	case "silver":
		return TierSilver, nil
	case "gold":
		return TierGold, nil
	case "platinum":
		return TierPlatinum, nil
	default:
		return TierUnknown, fmt.Errorf("unknown reputation tier %q", raw)
	}
}

// Reputation is the (score, tier) pair consumed from the reputation provider.
type Reputation struct {
	Score int
	Tier  Tier
}

// User is an account managed externally. The recruiting core treats it as
// read-mostly: score and tier are refreshed by the provider, never mutated here.
type User struct {
	ID          string
	DisplayName string
	Reputation  Reputation
	CreatedAt   time.Time
}

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	UserID string
	Email  string
}
