package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/application"
	"github.com/riskibarqy/squadhub/internal/domain/invite"
	"github.com/riskibarqy/squadhub/internal/domain/notification"
)

func TestInviteService_SendInvite_Guards(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 3)
	env.mustCreateSquad(t, "user-carol", 3)

	if _, err := env.invites.SendInvite(t.Context(), team.ID, "user-bob", "user-dana"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-captain, got %v", err)
	}
	if _, err := env.invites.SendInvite(t.Context(), team.ID, "user-alice", "user-carol"); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState inviting a squad member, got %v", err)
	}
	if _, err := env.invites.SendInvite(t.Context(), team.ID, "user-alice", "user-ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown invitee, got %v", err)
	}
	if _, err := env.invites.SendInvite(t.Context(), team.ID, "user-alice", "user-alice"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for self-invite, got %v", err)
	}

	if _, err := env.invites.SendInvite(t.Context(), team.ID, "user-alice", "user-bob"); err != nil {
		t.Fatalf("send invite failed: %v", err)
	}
	if _, err := env.invites.SendInvite(t.Context(), team.ID, "user-alice", "user-bob"); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState for duplicate pending invite, got %v", err)
	}
}

func TestInviteService_Accept_CancelsOtherCandidacies(t *testing.T) {
	env := newTestEnv()
	first := env.mustCreateSquad(t, "user-alice", 3)
	second := env.mustCreateSquad(t, "user-carol", 3)
	posting := env.mustPostPosition(t, second.ID, "user-carol", CreatePositionInput{Capacity: 1})

	fromAlice, err := env.invites.SendInvite(t.Context(), first.ID, "user-alice", "user-bob")
	if err != nil {
		t.Fatalf("send invite failed: %v", err)
	}
	fromCarol, err := env.invites.SendInvite(t.Context(), second.ID, "user-carol", "user-bob")
	if err != nil {
		t.Fatalf("send invite failed: %v", err)
	}
	pendingApp, err := env.applications.Apply(t.Context(), posting.ID, "user-bob")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	accepted, err := env.invites.Accept(t.Context(), fromAlice.ID, "user-bob")
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != invite.StatusAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}

	if squadID, isMember, _ := env.store.Squads().MemberSquadID(t.Context(), "user-bob"); !isMember || squadID != first.ID {
		t.Fatalf("expected bob in squad %s, got %s (%t)", first.ID, squadID, isMember)
	}

	// The competing candidacies died in the same commit.
	other, _, err := env.store.Invites().GetByID(t.Context(), fromCarol.ID)
	if err != nil {
		t.Fatalf("get invite: %v", err)
	}
	if other.Status != invite.StatusCancelled {
		t.Fatalf("expected competing invite cancelled, got %s", other.Status)
	}
	app, _, err := env.store.Applications().GetByID(t.Context(), pendingApp.ID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if app.Status != application.StatusWithdrawn {
		t.Fatalf("expected competing application withdrawn, got %s", app.Status)
	}

	// Alice hears about the acceptance; bob hears about the voided candidacies.
	aliceInbox, err := env.notifications.ListNotifications(t.Context(), "user-alice", 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	foundAccepted := false
	for _, n := range aliceInbox {
		if n.Kind == notification.KindInviteAccepted {
			foundAccepted = true
		}
	}
	if !foundAccepted {
		t.Fatalf("expected invite_accepted notification for inviter, got %+v", aliceInbox)
	}
}

func TestInviteService_Accept_SquadFullIsCapacityError(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 2)

	sent, err := env.invites.SendInvite(t.Context(), team.ID, "user-alice", "user-bob")
	if err != nil {
		t.Fatalf("send invite failed: %v", err)
	}
	// Dana takes the last seat before bob answers.
	otherInvite, err := env.invites.SendInvite(t.Context(), team.ID, "user-alice", "user-dana")
	if err != nil {
		t.Fatalf("send invite failed: %v", err)
	}
	if _, err := env.invites.Accept(t.Context(), otherInvite.ID, "user-dana"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	_, err = env.invites.Accept(t.Context(), sent.ID, "user-bob")
	if !errors.Is(err, ErrCapacity) {
		t.Fatalf("expected ErrCapacity for full squad, got %v", err)
	}

	record, _, err := env.store.Invites().GetByID(t.Context(), sent.ID)
	if err != nil {
		t.Fatalf("get invite: %v", err)
	}
	if record.Status != invite.StatusPending {
		t.Fatalf("expected invite left pending after failed accept, got %s", record.Status)
	}
	if _, isMember, _ := env.store.Squads().MemberSquadID(t.Context(), "user-bob"); isMember {
		t.Fatal("expected no membership row after failed accept")
	}
}

func TestInviteService_Accept_Expired(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 3)

	sent, err := env.invites.SendInvite(t.Context(), team.ID, "user-alice", "user-bob")
	if err != nil {
		t.Fatalf("send invite failed: %v", err)
	}

	env.setNow(testStart.Add(8 * 24 * time.Hour))

	if _, err := env.invites.Accept(t.Context(), sent.ID, "user-bob"); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState for expired invite, got %v", err)
	}
}

func TestInviteService_Decline_IsTerminal(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 3)

	sent, err := env.invites.SendInvite(t.Context(), team.ID, "user-alice", "user-bob")
	if err != nil {
		t.Fatalf("send invite failed: %v", err)
	}

	if _, err := env.invites.Decline(t.Context(), sent.ID, "user-dana"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-invitee, got %v", err)
	}

	declined, err := env.invites.Decline(t.Context(), sent.ID, "user-bob")
	if err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if declined.Status != invite.StatusDeclined {
		t.Fatalf("expected declined, got %s", declined.Status)
	}

	if _, err := env.invites.Accept(t.Context(), sent.ID, "user-bob"); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState accepting a declined invite, got %v", err)
	}
	if _, err := env.invites.Decline(t.Context(), sent.ID, "user-bob"); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState on second decline, got %v", err)
	}
}

func TestInviteService_Cancel_CaptainOnly(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 3)

	sent, err := env.invites.SendInvite(t.Context(), team.ID, "user-alice", "user-bob")
	if err != nil {
		t.Fatalf("send invite failed: %v", err)
	}

	if _, err := env.invites.Cancel(t.Context(), sent.ID, "user-bob"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-captain, got %v", err)
	}

	cancelled, err := env.invites.Cancel(t.Context(), sent.ID, "user-alice")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != invite.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	if _, err := env.invites.Accept(t.Context(), sent.ID, "user-bob"); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState accepting a cancelled invite, got %v", err)
	}
}
