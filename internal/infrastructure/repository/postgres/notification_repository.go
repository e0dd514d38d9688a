package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/squadhub/internal/domain/notification"
	"github.com/riskibarqy/squadhub/internal/platform/querybuilder"
)

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

var _ notification.Repository = (*NotificationRepository)(nil)

type notificationTableModel struct {
	ID          string    `db:"id"`
	RecipientID string    `db:"recipient_id"`
	Kind        string    `db:"kind"`
	Payload     []byte    `db:"payload"`
	IsRead      bool      `db:"is_read"`
	CreatedAt   time.Time `db:"created_at"`
}

func (m notificationTableModel) toDomain() (notification.Notification, error) {
	var payload map[string]any
	if len(m.Payload) > 0 {
		if err := sonic.Unmarshal(m.Payload, &payload); err != nil {
			return notification.Notification{}, fmt.Errorf("decode notification payload: %w", err)
		}
	}

	return notification.Notification{
		ID:          m.ID,
		RecipientID: m.RecipientID,
		Kind:        notification.Kind(m.Kind),
		Payload:     payload,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}, nil
}

func (r *NotificationRepository) Create(ctx context.Context, n notification.Notification) error {
	payload, err := sonic.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}

	query, args, err := querybuilder.InsertInto("notifications").
		Columns("id", "recipient_id", "kind", "payload", "is_read", "created_at").
		Values(n.ID, n.RecipientID, string(n.Kind), payload, n.IsRead, n.CreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert notification query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]notification.Notification, error) {
	query, args, err := querybuilder.Select("id", "recipient_id", "kind", "payload", "is_read", "created_at").
		From("notifications").
		Where(querybuilder.Eq("recipient_id", recipientID)).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list notifications query: %w", err)
	}

	var rows []notificationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select notifications: %w", err)
	}

	notifications := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		n, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, recipientID string) error {
	// Scoped to the recipient so one user cannot mark another's rows; a
	// mismatched recipient is a silent no-op just like a repeated read.
	query, args, err := querybuilder.Update("notifications").
		Set("is_read", true).
		Where(
			querybuilder.Eq("id", notificationID),
			querybuilder.Eq("recipient_id", recipientID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark notification read query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	const query = `
SELECT COUNT(*)
FROM notifications
WHERE recipient_id = $1
  AND is_read = FALSE`

	var count int
	if err := r.db.GetContext(ctx, &count, query, recipientID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}
