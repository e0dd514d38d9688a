package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/squad"
)

type SquadRepository struct {
	store *Store
}

var _ squad.Repository = (*SquadRepository)(nil)

func (r *SquadRepository) Create(_ context.Context, s squad.Squad, captain squad.Member) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.squads[s.ID]; exists {
		return fmt.Errorf("squad %s already exists", s.ID)
	}
	if _, taken := r.store.memberByUser[captain.UserID]; taken {
		return squad.ErrAlreadyMember
	}

	r.store.squads[s.ID] = s
	r.store.memberByUser[captain.UserID] = captain

	return nil
}

func (r *SquadRepository) GetByID(_ context.Context, squadID string) (squad.Squad, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.squads[squadID]
	return s, ok, nil
}

func (r *SquadRepository) GetMember(_ context.Context, squadID, userID string) (squad.Member, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.memberByUser[userID]
	if !ok || m.SquadID != squadID {
		return squad.Member{}, false, nil
	}
	return m, true, nil
}

func (r *SquadRepository) MemberSquadID(_ context.Context, userID string) (string, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.memberByUser[userID]
	if !ok {
		return "", false, nil
	}
	return m.SquadID, true, nil
}

func (r *SquadRepository) ListMembers(_ context.Context, squadID string) ([]squad.Member, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	members := make([]squad.Member, 0)
	for _, m := range r.store.memberByUser {
		if m.SquadID == squadID {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].UserID < members[j].UserID
		}
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})

	return members, nil
}

func (r *SquadRepository) CountMembers(_ context.Context, squadID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.countMembersLocked(squadID), nil
}

func (r *SquadRepository) AddMember(_ context.Context, m squad.Member, maxSize int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.addMemberLocked(m, maxSize)
}

func (r *SquadRepository) RemoveMember(_ context.Context, squadID, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m, ok := r.store.memberByUser[userID]
	if !ok || m.SquadID != squadID {
		return squad.ErrNotMember
	}
	if m.Role == squad.RoleCaptain {
		return squad.ErrCaptainCannotLeave
	}
	delete(r.store.memberByUser, userID)

	return nil
}

func (r *SquadRepository) TransferCaptaincy(_ context.Context, squadID, fromUserID, toUserID string, _ time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.squads[squadID]
	if !ok {
		return fmt.Errorf("squad %s not found", squadID)
	}
	from, ok := r.store.memberByUser[fromUserID]
	if !ok || from.SquadID != squadID || from.Role != squad.RoleCaptain {
		return squad.ErrNotMember
	}
	to, ok := r.store.memberByUser[toUserID]
	if !ok || to.SquadID != squadID {
		return squad.ErrNotMember
	}

	from.Role = squad.RoleMember
	to.Role = squad.RoleCaptain
	s.CaptainID = toUserID
	r.store.memberByUser[fromUserID] = from
	r.store.memberByUser[toUserID] = to
	r.store.squads[squadID] = s

	return nil
}
