package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/squadhub/internal/domain/notification"
)

type NotificationRepository struct {
	store *Store
}

var _ notification.Repository = (*NotificationRepository)(nil)

func (r *NotificationRepository) Create(_ context.Context, n notification.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.notifications[n.ID]; exists {
		return fmt.Errorf("notification %s already exists", n.ID)
	}
	r.store.notifications[n.ID] = n

	return nil
}

func (r *NotificationRepository) ListByRecipient(_ context.Context, recipientID string, limit int) ([]notification.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]notification.Notification, 0)
	for _, n := range r.store.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	// Newest first.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, notificationID, recipientID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n, ok := r.store.notifications[notificationID]
	if !ok || n.RecipientID != recipientID {
		return nil
	}
	n.IsRead = true
	r.store.notifications[notificationID] = n

	return nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, recipientID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, n := range r.store.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}

	return count, nil
}
