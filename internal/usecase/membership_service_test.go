package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/squadhub/internal/domain/squad"
)

func TestMembershipService_CreateSquad(t *testing.T) {
	env := newTestEnv()

	created, err := env.memberships.CreateSquad(t.Context(), CreateSquadInput{
		CaptainID: "user-alice",
		Name:      "Night Watch",
		MaxSize:   4,
	})
	if err != nil {
		t.Fatalf("create squad failed: %v", err)
	}
	if created.CaptainID != "user-alice" {
		t.Fatalf("expected alice as captain, got %s", created.CaptainID)
	}

	detail, err := env.memberships.GetSquad(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("get squad failed: %v", err)
	}
	if len(detail.Members) != 1 || detail.Members[0].Role != squad.RoleCaptain {
		t.Fatalf("expected a single captain member, got %+v", detail.Members)
	}

	// Founding a second squad while belonging to one is blocked.
	if _, err := env.memberships.CreateSquad(t.Context(), CreateSquadInput{
		CaptainID: "user-alice",
		Name:      "Second Watch",
		MaxSize:   4,
	}); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState for founder already in a squad, got %v", err)
	}

	if _, err := env.memberships.CreateSquad(t.Context(), CreateSquadInput{
		CaptainID: "user-ghost",
		Name:      "Ghost Watch",
		MaxSize:   4,
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown founder, got %v", err)
	}

	if _, err := env.memberships.CreateSquad(t.Context(), CreateSquadInput{
		CaptainID: "user-bob",
		Name:      "",
		MaxSize:   4,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing name, got %v", err)
	}
}

func TestMembershipService_LeaveSquad(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 3)

	sent, err := env.invites.SendInvite(t.Context(), team.ID, "user-alice", "user-bob")
	if err != nil {
		t.Fatalf("send invite failed: %v", err)
	}
	if _, err := env.invites.Accept(t.Context(), sent.ID, "user-bob"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if err := env.memberships.LeaveSquad(t.Context(), team.ID, "user-alice"); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState for captain leaving, got %v", err)
	}
	if err := env.memberships.LeaveSquad(t.Context(), team.ID, "user-dana"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-member, got %v", err)
	}

	if err := env.memberships.LeaveSquad(t.Context(), team.ID, "user-bob"); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if _, isMember, _ := env.store.Squads().MemberSquadID(t.Context(), "user-bob"); isMember {
		t.Fatal("expected bob to be out of the squad")
	}
}

func TestMembershipService_TransferCaptaincy(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 3)

	sent, err := env.invites.SendInvite(t.Context(), team.ID, "user-alice", "user-bob")
	if err != nil {
		t.Fatalf("send invite failed: %v", err)
	}
	if _, err := env.invites.Accept(t.Context(), sent.ID, "user-bob"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if err := env.memberships.TransferCaptaincy(t.Context(), team.ID, "user-bob", "user-alice"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-captain transfer, got %v", err)
	}
	if err := env.memberships.TransferCaptaincy(t.Context(), team.ID, "user-alice", "user-dana"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-member target, got %v", err)
	}

	if err := env.memberships.TransferCaptaincy(t.Context(), team.ID, "user-alice", "user-bob"); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	detail, err := env.memberships.GetSquad(t.Context(), team.ID)
	if err != nil {
		t.Fatalf("get squad failed: %v", err)
	}
	if detail.Squad.CaptainID != "user-bob" {
		t.Fatalf("expected bob as captain, got %s", detail.Squad.CaptainID)
	}
	for _, m := range detail.Members {
		wantRole := squad.RoleMember
		if m.UserID == "user-bob" {
			wantRole = squad.RoleCaptain
		}
		if m.Role != wantRole {
			t.Fatalf("expected %s role %s, got %s", m.UserID, wantRole, m.Role)
		}
	}

	// The old captain can leave now.
	if err := env.memberships.LeaveSquad(t.Context(), team.ID, "user-alice"); err != nil {
		t.Fatalf("leave after transfer failed: %v", err)
	}
}
