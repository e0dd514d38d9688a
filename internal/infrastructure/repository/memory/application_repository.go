package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/application"
	"github.com/riskibarqy/squadhub/internal/domain/position"
	"github.com/riskibarqy/squadhub/internal/domain/squad"
)

type ApplicationRepository struct {
	store *Store
}

var _ application.Repository = (*ApplicationRepository)(nil)

func (r *ApplicationRepository) Create(_ context.Context, a application.Application) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.applications {
		if existing.PositionID == a.PositionID &&
			existing.ApplicantID == a.ApplicantID &&
			existing.Status == application.StatusPending {
			return application.ErrDuplicatePending
		}
	}
	if _, exists := r.store.applications[a.ID]; exists {
		return fmt.Errorf("application %s already exists", a.ID)
	}
	r.store.applications[a.ID] = a

	return nil
}

func (r *ApplicationRepository) GetByID(_ context.Context, applicationID string) (application.Application, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.applications[applicationID]
	return a, ok, nil
}

func (r *ApplicationRepository) ListByPosition(_ context.Context, positionID string) ([]application.Application, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]application.Application, 0)
	for _, a := range r.store.applications {
		if a.PositionID == positionID {
			out = append(out, a)
		}
	}
	sortApplications(out)

	return out, nil
}

func (r *ApplicationRepository) ListByApplicant(_ context.Context, applicantID string) ([]application.Application, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]application.Application, 0)
	for _, a := range r.store.applications {
		if a.ApplicantID == applicantID {
			out = append(out, a)
		}
	}
	sortApplications(out)

	return out, nil
}

func (r *ApplicationRepository) HasPending(_ context.Context, positionID, applicantID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, a := range r.store.applications {
		if a.PositionID == positionID && a.ApplicantID == applicantID && a.Status == application.StatusPending {
			return true, nil
		}
	}

	return false, nil
}

func (r *ApplicationRepository) UpdateStatusFromPending(_ context.Context, applicationID string, to application.Status, decidedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.applications[applicationID]
	if !ok {
		return fmt.Errorf("application %s not found", applicationID)
	}
	if a.Status.Terminal() {
		return application.ErrNotPending
	}
	a.Status = to
	a.DecidedAt = &decidedAt
	r.store.applications[applicationID] = a

	return nil
}

func (r *ApplicationRepository) Expire(_ context.Context, applicationID string, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.applications[applicationID]
	if !ok {
		return fmt.Errorf("application %s not found", applicationID)
	}
	if a.Status.Terminal() {
		return application.ErrNotPending
	}
	if now.Before(a.ExpiresAt) {
		return application.ErrNotExpired
	}
	decidedAt := now
	a.Status = application.StatusExpired
	a.DecidedAt = &decidedAt
	r.store.applications[applicationID] = a

	return nil
}

func (r *ApplicationRepository) Approve(_ context.Context, cmd application.ApproveCommand) (application.ApproveOutcome, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.applications[cmd.ApplicationID]
	if !ok {
		return application.ApproveOutcome{}, fmt.Errorf("application %s not found", cmd.ApplicationID)
	}
	if a.Status != application.StatusPending {
		return application.ApproveOutcome{}, application.ErrNotPending
	}

	p, ok := r.store.positions[cmd.PositionID]
	if !ok {
		return application.ApproveOutcome{}, fmt.Errorf("position %s not found", cmd.PositionID)
	}
	if !p.IsOpen || !cmd.DecidedAt.Before(p.ExpiresAt) {
		return application.ApproveOutcome{}, position.ErrClosed
	}
	if p.FilledCount >= p.Capacity {
		return application.ApproveOutcome{}, position.ErrFilled
	}

	member := squad.Member{
		SquadID:  cmd.SquadID,
		UserID:   cmd.ApplicantID,
		Role:     squad.RoleMember,
		JoinedAt: cmd.DecidedAt,
	}
	if err := r.store.addMemberLocked(member, cmd.SquadMaxSize); err != nil {
		return application.ApproveOutcome{}, err
	}

	decidedAt := cmd.DecidedAt
	a.Status = application.StatusApproved
	a.DecidedAt = &decidedAt
	r.store.applications[a.ID] = a

	p.FilledCount++
	closed := false
	if p.FilledCount >= p.Capacity {
		p.IsOpen = false
		closed = true
	}
	r.store.positions[p.ID] = p

	return application.ApproveOutcome{FilledCount: p.FilledCount, PositionClosed: closed}, nil
}

func (r *ApplicationRepository) ListExpiredPending(_ context.Context, now time.Time, limit int) ([]application.Application, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]application.Application, 0)
	for _, a := range r.store.applications {
		if a.Status == application.StatusPending && !now.Before(a.ExpiresAt) {
			out = append(out, a)
		}
	}
	sortApplications(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func sortApplications(applications []application.Application) {
	sort.Slice(applications, func(i, j int) bool {
		if applications[i].CreatedAt.Equal(applications[j].CreatedAt) {
			return applications[i].ID < applications[j].ID
		}
		return applications[i].CreatedAt.Before(applications[j].CreatedAt)
	})
}
