package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/position"
)

type PositionRepository struct {
	store *Store
}

var _ position.Repository = (*PositionRepository)(nil)

func (r *PositionRepository) Create(_ context.Context, p position.Position) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.positions[p.ID]; exists {
		return fmt.Errorf("position %s already exists", p.ID)
	}
	r.store.positions[p.ID] = clonePosition(p)

	return nil
}

func (r *PositionRepository) GetByID(_ context.Context, positionID string) (position.Position, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.positions[positionID]
	if !ok {
		return position.Position{}, false, nil
	}
	return clonePosition(p), true, nil
}

func (r *PositionRepository) ListOpen(_ context.Context, now time.Time) ([]position.Position, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]position.Position, 0)
	for _, p := range r.store.positions {
		if p.IsOpen && now.Before(p.ExpiresAt) {
			out = append(out, clonePosition(p))
		}
	}
	sortPositions(out)

	return out, nil
}

func (r *PositionRepository) ListBySquad(_ context.Context, squadID string) ([]position.Position, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]position.Position, 0)
	for _, p := range r.store.positions {
		if p.SquadID == squadID {
			out = append(out, clonePosition(p))
		}
	}
	sortPositions(out)

	return out, nil
}

func (r *PositionRepository) Close(_ context.Context, positionID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.positions[positionID]
	if !ok {
		return fmt.Errorf("position %s not found", positionID)
	}
	if !p.IsOpen {
		return position.ErrClosed
	}
	p.IsOpen = false
	r.store.positions[positionID] = p

	return nil
}

func (r *PositionRepository) ListExpiredOpen(_ context.Context, now time.Time, limit int) ([]position.Position, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]position.Position, 0)
	for _, p := range r.store.positions {
		if p.IsOpen && !now.Before(p.ExpiresAt) {
			out = append(out, clonePosition(p))
		}
	}
	sortPositions(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func sortPositions(positions []position.Position) {
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].CreatedAt.Equal(positions[j].CreatedAt) {
			return positions[i].ID < positions[j].ID
		}
		return positions[i].CreatedAt.Before(positions[j].CreatedAt)
	})
}

func clonePosition(p position.Position) position.Position {
	p.Benefits = append([]string(nil), p.Benefits...)
	return p
}
