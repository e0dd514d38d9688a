// Package memory provides in-process repositories for tests and local runs.
// All entity maps share one lock so the multi-entity commits (approve,
// accept) hold the same atomicity guarantees as the SQL transactions.
package memory

import (
	"sync"

	"github.com/riskibarqy/squadhub/internal/domain/application"
	"github.com/riskibarqy/squadhub/internal/domain/invite"
	"github.com/riskibarqy/squadhub/internal/domain/notification"
	"github.com/riskibarqy/squadhub/internal/domain/position"
	"github.com/riskibarqy/squadhub/internal/domain/squad"
	"github.com/riskibarqy/squadhub/internal/domain/user"
)

type Store struct {
	mu sync.RWMutex

	users  map[string]user.User
	squads map[string]squad.Squad
	// memberByUser encodes one-squad-per-user: a user holds at most one row.
	memberByUser  map[string]squad.Member
	positions     map[string]position.Position
	applications  map[string]application.Application
	invites       map[string]invite.Invite
	notifications map[string]notification.Notification
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]user.User),
		squads:        make(map[string]squad.Squad),
		memberByUser:  make(map[string]squad.Member),
		positions:     make(map[string]position.Position),
		applications:  make(map[string]application.Application),
		invites:       make(map[string]invite.Invite),
		notifications: make(map[string]notification.Notification),
	}
}

func (s *Store) Users() *UserRepository                 { return &UserRepository{store: s} }
func (s *Store) Squads() *SquadRepository               { return &SquadRepository{store: s} }
func (s *Store) Positions() *PositionRepository         { return &PositionRepository{store: s} }
func (s *Store) Applications() *ApplicationRepository   { return &ApplicationRepository{store: s} }
func (s *Store) Invites() *InviteRepository             { return &InviteRepository{store: s} }
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{store: s} }

// SeedUser inserts or replaces a user record, for tests and local bootstrap.
func (s *Store) SeedUser(u user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// countMembersLocked requires at least a read lock.
func (s *Store) countMembersLocked(squadID string) int {
	count := 0
	for _, m := range s.memberByUser {
		if m.SquadID == squadID {
			count++
		}
	}
	return count
}

// addMemberLocked enforces the membership guards and requires the write lock.
func (s *Store) addMemberLocked(m squad.Member, maxSize int) error {
	if _, taken := s.memberByUser[m.UserID]; taken {
		return squad.ErrAlreadyMember
	}
	if s.countMembersLocked(m.SquadID) >= maxSize {
		return squad.ErrFull
	}
	s.memberByUser[m.UserID] = m
	return nil
}
