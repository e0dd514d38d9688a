package usecase

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/position"
	"github.com/riskibarqy/squadhub/internal/domain/squad"
	"github.com/riskibarqy/squadhub/internal/domain/user"
	"github.com/riskibarqy/squadhub/internal/infrastructure/repository/memory"
)

type seqIDGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++
	return fmt.Sprintf("id-%03d", g.n), nil
}

// testEnv wires every service against one shared in-memory store with a
// pinned clock.
type testEnv struct {
	store         *memory.Store
	memberships   *MembershipService
	positions     *PositionService
	applications  *ApplicationService
	invites       *InviteService
	sweeper       *SweeperService
	notifications *NotificationService
}

var testStart = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func newTestEnv() *testEnv {
	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	idGen := &seqIDGenerator{}
	notifier := NewNotifier(store.Notifications(), NopPublisher{}, idGen, logger)

	env := &testEnv{
		store:       store,
		memberships: NewMembershipService(store.Squads(), store.Users(), idGen, logger),
		positions:   NewPositionService(store.Positions(), store.Squads(), idGen, logger),
		applications: NewApplicationService(
			store.Applications(),
			store.Positions(),
			store.Squads(),
			store.Users(),
			notifier,
			idGen,
			logger,
		),
		invites: NewInviteService(
			store.Invites(),
			store.Squads(),
			store.Users(),
			notifier,
			idGen,
			logger,
		),
		sweeper: NewSweeperService(
			store.Applications(),
			store.Invites(),
			store.Positions(),
			store.Squads(),
			notifier,
			logger,
		),
		notifications: NewNotificationService(store.Notifications(), logger),
	}

	for _, u := range []user.User{
		{ID: "user-alice", DisplayName: "Alice", Reputation: user.Reputation{Score: 900, Tier: user.TierGold}},
		{ID: "user-bob", DisplayName: "Bob", Reputation: user.Reputation{Score: 720, Tier: user.TierGold}},
		{ID: "user-carol", DisplayName: "Carol", Reputation: user.Reputation{Score: 880, Tier: user.TierPlatinum}},
		{ID: "user-dana", DisplayName: "Dana", Reputation: user.Reputation{Score: 510, Tier: user.TierSilver}},
		{ID: "user-eve", DisplayName: "Eve", Reputation: user.Reputation{Score: 140, Tier: user.TierBronze}},
	} {
		u.CreatedAt = testStart.Add(-30 * 24 * time.Hour)
		store.SeedUser(u)
	}

	env.setNow(testStart)

	return env
}

func (e *testEnv) setNow(at time.Time) {
	clock := func() time.Time { return at }
	e.memberships.now = clock
	e.positions.now = clock
	e.applications.now = clock
	e.invites.now = clock
	e.sweeper.now = clock
}

func (e *testEnv) mustCreateSquad(t *testing.T, captainID string, maxSize int) squad.Squad {
	t.Helper()

	created, err := e.memberships.CreateSquad(t.Context(), CreateSquadInput{
		CaptainID: captainID,
		Name:      "Squad of " + captainID,
		MaxSize:   maxSize,
	})
	if err != nil {
		t.Fatalf("create squad for %s: %v", captainID, err)
	}

	return created
}

func (e *testEnv) mustPostPosition(t *testing.T, squadID, captainID string, input CreatePositionInput) position.Position {
	t.Helper()

	input.SquadID = squadID
	input.ActingUserID = captainID
	if input.Role == "" {
		input.Role = "healer"
	}
	if input.Capacity == 0 {
		input.Capacity = 1
	}

	created, err := e.positions.CreatePosition(t.Context(), input)
	if err != nil {
		t.Fatalf("post position for %s: %v", squadID, err)
	}

	return created
}
