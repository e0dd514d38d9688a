package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/application"
	"github.com/riskibarqy/squadhub/internal/domain/notification"
	"github.com/riskibarqy/squadhub/internal/domain/user"
)

func TestApplicationService_ApplyAndApprove_FillsPosition(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 3)
	posting := env.mustPostPosition(t, team.ID, "user-alice", CreatePositionInput{Capacity: 1})

	applied, err := env.applications.Apply(t.Context(), posting.ID, "user-bob")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if applied.Status != application.StatusPending {
		t.Fatalf("expected pending application, got %s", applied.Status)
	}
	if !applied.ExpiresAt.Equal(posting.ExpiresAt) {
		t.Fatalf("expected application expiry inherited from position")
	}

	captainInbox, err := env.notifications.ListNotifications(t.Context(), "user-alice", 10)
	if err != nil {
		t.Fatalf("list captain notifications: %v", err)
	}
	if len(captainInbox) != 1 || captainInbox[0].Kind != notification.KindApplicationReceived {
		t.Fatalf("expected one application_received notification, got %v", captainInbox)
	}

	result, err := env.applications.Approve(t.Context(), applied.ID, "user-alice")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if result.Application.Status != application.StatusApproved {
		t.Fatalf("expected approved, got %s", result.Application.Status)
	}
	if result.FilledCount != 1 || !result.PositionClosed {
		t.Fatalf("expected last slot to close the position, got filled=%d closed=%t",
			result.FilledCount, result.PositionClosed)
	}

	memberSquadID, isMember, err := env.store.Squads().MemberSquadID(t.Context(), "user-bob")
	if err != nil || !isMember || memberSquadID != team.ID {
		t.Fatalf("expected bob in squad %s, got %s (%t, %v)", team.ID, memberSquadID, isMember, err)
	}

	refreshed, err := env.positions.GetPosition(t.Context(), posting.ID)
	if err != nil {
		t.Fatalf("get position: %v", err)
	}
	if refreshed.IsOpen {
		t.Fatal("expected position closed after last slot filled")
	}

	// The position is closed now, so a late applicant is turned away.
	_, err = env.applications.Apply(t.Context(), posting.ID, "user-dana")
	if !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState for closed position, got %v", err)
	}
}

func TestApplicationService_Apply_EligibilityFailures(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 3)
	posting := env.mustPostPosition(t, team.ID, "user-alice", CreatePositionInput{Capacity: 2, MinTier: user.TierSilver})

	// Captain already belongs to a squad.
	if _, err := env.applications.Apply(t.Context(), posting.ID, "user-alice"); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState for member applicant, got %v", err)
	}

	// Bronze tier against a silver minimum.
	if _, err := env.applications.Apply(t.Context(), posting.ID, "user-eve"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for tier too low, got %v", err)
	}

	if _, err := env.applications.Apply(t.Context(), posting.ID, "user-bob"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := env.applications.Apply(t.Context(), posting.ID, "user-bob"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for duplicate application, got %v", err)
	}

	if _, err := env.applications.Apply(t.Context(), "missing", "user-bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing position, got %v", err)
	}
}

func TestApplicationService_Approve_Authorization(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 3)
	posting := env.mustPostPosition(t, team.ID, "user-alice", CreatePositionInput{Capacity: 1})

	applied, err := env.applications.Apply(t.Context(), posting.ID, "user-bob")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if _, err := env.applications.Approve(t.Context(), applied.ID, "user-dana"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-captain, got %v", err)
	}
	if _, err := env.applications.Approve(t.Context(), "missing", "user-alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing application, got %v", err)
	}
}

func TestApplicationService_Approve_SquadFullIsCapacityError(t *testing.T) {
	env := newTestEnv()
	// The captain alone fills the squad; the position still has room.
	team := env.mustCreateSquad(t, "user-alice", 1)
	posting := env.mustPostPosition(t, team.ID, "user-alice", CreatePositionInput{Capacity: 2})

	applied, err := env.applications.Apply(t.Context(), posting.ID, "user-bob")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	_, err = env.applications.Approve(t.Context(), applied.ID, "user-alice")
	if !errors.Is(err, ErrCapacity) {
		t.Fatalf("expected ErrCapacity for full squad, got %v", err)
	}

	// The failed approval left no partial state behind.
	record, _, err := env.store.Applications().GetByID(t.Context(), applied.ID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if record.Status != application.StatusPending {
		t.Fatalf("expected application still pending, got %s", record.Status)
	}
	if _, isMember, _ := env.store.Squads().MemberSquadID(t.Context(), "user-bob"); isMember {
		t.Fatal("expected no membership row after failed approval")
	}
}

func TestApplicationService_Approve_LastSlotLoserFailsCleanly(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 5)
	posting := env.mustPostPosition(t, team.ID, "user-alice", CreatePositionInput{Capacity: 1})

	first, err := env.applications.Apply(t.Context(), posting.ID, "user-bob")
	if err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	second, err := env.applications.Apply(t.Context(), posting.ID, "user-dana")
	if err != nil {
		t.Fatalf("second apply failed: %v", err)
	}

	if _, err := env.applications.Approve(t.Context(), first.ID, "user-alice"); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}

	_, err = env.applications.Approve(t.Context(), second.ID, "user-alice")
	if !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState for exhausted position, got %v", err)
	}

	record, _, err := env.store.Applications().GetByID(t.Context(), second.ID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if record.Status != application.StatusPending {
		t.Fatalf("expected losing application left pending, got %s", record.Status)
	}
	if _, isMember, _ := env.store.Squads().MemberSquadID(t.Context(), "user-dana"); isMember {
		t.Fatal("expected no membership row for the losing applicant")
	}
}

func TestApplicationService_Reject_IsTerminal(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 3)
	posting := env.mustPostPosition(t, team.ID, "user-alice", CreatePositionInput{Capacity: 1})

	applied, err := env.applications.Apply(t.Context(), posting.ID, "user-bob")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	rejected, err := env.applications.Reject(t.Context(), applied.ID, "user-alice")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != application.StatusRejected || rejected.DecidedAt == nil {
		t.Fatalf("expected rejected with decided_at, got %+v", rejected)
	}

	if _, err := env.applications.Reject(t.Context(), applied.ID, "user-alice"); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState on second reject, got %v", err)
	}
	if _, err := env.applications.Approve(t.Context(), applied.ID, "user-alice"); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState approving a rejected application, got %v", err)
	}

	// Rejection frees the pair for a fresh application.
	if _, err := env.applications.Apply(t.Context(), posting.ID, "user-bob"); err != nil {
		t.Fatalf("re-apply after rejection failed: %v", err)
	}
}

func TestApplicationService_Withdraw_OnlyApplicant(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 3)
	posting := env.mustPostPosition(t, team.ID, "user-alice", CreatePositionInput{Capacity: 1})

	applied, err := env.applications.Apply(t.Context(), posting.ID, "user-bob")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if _, err := env.applications.Withdraw(t.Context(), applied.ID, "user-alice"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-applicant, got %v", err)
	}

	withdrawn, err := env.applications.Withdraw(t.Context(), applied.ID, "user-bob")
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if withdrawn.Status != application.StatusWithdrawn {
		t.Fatalf("expected withdrawn, got %s", withdrawn.Status)
	}

	if _, err := env.applications.Withdraw(t.Context(), applied.ID, "user-bob"); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState on second withdraw, got %v", err)
	}
}

func TestApplicationService_CheckEligibility_PreFlight(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 3)
	posting := env.mustPostPosition(t, team.ID, "user-alice", CreatePositionInput{Capacity: 1, MinTier: user.TierGold})

	eligible, err := env.applications.CheckEligibility(t.Context(), posting.ID, "user-bob")
	if err != nil {
		t.Fatalf("check eligibility failed: %v", err)
	}
	if !eligible.Eligible || eligible.Reason != "" {
		t.Fatalf("expected gold user eligible for gold minimum, got %+v", eligible)
	}

	blocked, err := env.applications.CheckEligibility(t.Context(), posting.ID, "user-dana")
	if err != nil {
		t.Fatalf("check eligibility failed: %v", err)
	}
	if blocked.Eligible || blocked.Reason != "tier too low" {
		t.Fatalf("expected tier too low, got %+v", blocked)
	}

	// Pre-flight checks never create state.
	records, err := env.applications.ListMyApplications(t.Context(), "user-bob")
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no applications after pre-flight, got %d", len(records))
	}
}

func TestApplicationService_ListPositionApplications_CaptainOnly(t *testing.T) {
	env := newTestEnv()
	team := env.mustCreateSquad(t, "user-alice", 3)
	posting := env.mustPostPosition(t, team.ID, "user-alice", CreatePositionInput{Capacity: 2})

	if _, err := env.applications.Apply(t.Context(), posting.ID, "user-bob"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	env.setNow(testStart.Add(time.Minute))
	if _, err := env.applications.Apply(t.Context(), posting.ID, "user-dana"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if _, err := env.applications.ListPositionApplications(t.Context(), posting.ID, "user-bob"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-captain, got %v", err)
	}

	records, err := env.applications.ListPositionApplications(t.Context(), posting.ID, "user-alice")
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(records) != 2 || records[0].ApplicantID != "user-bob" {
		t.Fatalf("expected two applications oldest first, got %+v", records)
	}
}
