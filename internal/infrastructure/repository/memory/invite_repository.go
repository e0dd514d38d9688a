package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/application"
	"github.com/riskibarqy/squadhub/internal/domain/invite"
	"github.com/riskibarqy/squadhub/internal/domain/squad"
)

type InviteRepository struct {
	store *Store
}

var _ invite.Repository = (*InviteRepository)(nil)

func (r *InviteRepository) Create(_ context.Context, i invite.Invite) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.invites {
		if existing.SquadID == i.SquadID &&
			existing.InviteeID == i.InviteeID &&
			existing.Status == invite.StatusPending {
			return invite.ErrDuplicatePending
		}
	}
	if _, exists := r.store.invites[i.ID]; exists {
		return fmt.Errorf("invite %s already exists", i.ID)
	}
	r.store.invites[i.ID] = i

	return nil
}

func (r *InviteRepository) GetByID(_ context.Context, inviteID string) (invite.Invite, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	i, ok := r.store.invites[inviteID]
	return i, ok, nil
}

func (r *InviteRepository) ListByInvitee(_ context.Context, inviteeID string) ([]invite.Invite, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]invite.Invite, 0)
	for _, i := range r.store.invites {
		if i.InviteeID == inviteeID {
			out = append(out, i)
		}
	}
	sortInvites(out)

	return out, nil
}

func (r *InviteRepository) ListBySquad(_ context.Context, squadID string) ([]invite.Invite, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]invite.Invite, 0)
	for _, i := range r.store.invites {
		if i.SquadID == squadID {
			out = append(out, i)
		}
	}
	sortInvites(out)

	return out, nil
}

func (r *InviteRepository) UpdateStatusFromPending(_ context.Context, inviteID string, to invite.Status, decidedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	i, ok := r.store.invites[inviteID]
	if !ok {
		return fmt.Errorf("invite %s not found", inviteID)
	}
	if i.Status.Terminal() {
		return invite.ErrNotPending
	}
	i.Status = to
	i.DecidedAt = &decidedAt
	r.store.invites[inviteID] = i

	return nil
}

func (r *InviteRepository) Expire(_ context.Context, inviteID string, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	i, ok := r.store.invites[inviteID]
	if !ok {
		return fmt.Errorf("invite %s not found", inviteID)
	}
	if i.Status.Terminal() {
		return invite.ErrNotPending
	}
	if now.Before(i.ExpiresAt) {
		return invite.ErrNotExpired
	}
	decidedAt := now
	i.Status = invite.StatusExpired
	i.DecidedAt = &decidedAt
	r.store.invites[inviteID] = i

	return nil
}

func (r *InviteRepository) Accept(_ context.Context, cmd invite.AcceptCommand) (invite.AcceptOutcome, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	i, ok := r.store.invites[cmd.InviteID]
	if !ok {
		return invite.AcceptOutcome{}, fmt.Errorf("invite %s not found", cmd.InviteID)
	}
	if i.Status != invite.StatusPending {
		return invite.AcceptOutcome{}, invite.ErrNotPending
	}
	if !cmd.DecidedAt.Before(i.ExpiresAt) {
		return invite.AcceptOutcome{}, invite.ErrExpired
	}

	member := squad.Member{
		SquadID:  cmd.SquadID,
		UserID:   cmd.InviteeID,
		Role:     squad.RoleMember,
		JoinedAt: cmd.DecidedAt,
	}
	if err := r.store.addMemberLocked(member, cmd.SquadMaxSize); err != nil {
		return invite.AcceptOutcome{}, err
	}

	decidedAt := cmd.DecidedAt
	i.Status = invite.StatusAccepted
	i.DecidedAt = &decidedAt
	r.store.invites[i.ID] = i

	// The new member cannot stay a candidate elsewhere: void their other
	// pending invites and applications in the same commit.
	outcome := invite.AcceptOutcome{}
	for id, other := range r.store.invites {
		if id == i.ID || other.InviteeID != cmd.InviteeID || other.Status != invite.StatusPending {
			continue
		}
		other.Status = invite.StatusCancelled
		other.DecidedAt = &decidedAt
		r.store.invites[id] = other
		outcome.CancelledInviteIDs = append(outcome.CancelledInviteIDs, id)
	}
	for id, app := range r.store.applications {
		if app.ApplicantID != cmd.InviteeID || app.Status != application.StatusPending {
			continue
		}
		app.Status = application.StatusWithdrawn
		app.DecidedAt = &decidedAt
		r.store.applications[id] = app
		outcome.WithdrawnApplicationIDs = append(outcome.WithdrawnApplicationIDs, id)
	}
	sort.Strings(outcome.CancelledInviteIDs)
	sort.Strings(outcome.WithdrawnApplicationIDs)

	return outcome, nil
}

func (r *InviteRepository) ListExpiredPending(_ context.Context, now time.Time, limit int) ([]invite.Invite, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]invite.Invite, 0)
	for _, i := range r.store.invites {
		if i.Status == invite.StatusPending && !now.Before(i.ExpiresAt) {
			out = append(out, i)
		}
	}
	sortInvites(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func sortInvites(invites []invite.Invite) {
	sort.Slice(invites, func(i, j int) bool {
		if invites[i].CreatedAt.Equal(invites[j].CreatedAt) {
			return invites[i].ID < invites[j].ID
		}
		return invites[i].CreatedAt.Before(invites[j].CreatedAt)
	})
}
