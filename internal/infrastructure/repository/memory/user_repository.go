package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/squadhub/internal/domain/user"
)

type UserRepository struct {
	store *Store
}

var _ user.Repository = (*UserRepository)(nil)

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[userID]
	return u, ok, nil
}

func (r *UserRepository) UpdateReputation(_ context.Context, userID string, rep user.Reputation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[userID]
	if !ok {
		return fmt.Errorf("user %s not found", userID)
	}
	u.Reputation = rep
	r.store.users[userID] = u

	return nil
}
