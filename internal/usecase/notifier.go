package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/notification"
	idgen "github.com/riskibarqy/squadhub/internal/platform/id"
)

// EventPublisher pushes a notification to an external channel (webhook,
// queue). Publishing is best-effort; persistence is the source of truth.
type EventPublisher interface {
	Publish(ctx context.Context, n notification.Notification) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, notification.Notification) error { return nil }

// Notifier persists notifications and fans them out to the publisher.
// Emission never fails the lifecycle operation that triggered it.
type Notifier struct {
	repo      notification.Repository
	publisher EventPublisher
	idGen     idgen.Generator
	logger    *slog.Logger
	now       func() time.Time
}

func NewNotifier(repo notification.Repository, publisher EventPublisher, idGen idgen.Generator, logger *slog.Logger) *Notifier {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Notifier{
		repo:      repo,
		publisher: publisher,
		idGen:     idGen,
		logger:    logger,
		now:       time.Now,
	}
}

func (n *Notifier) Emit(ctx context.Context, recipientID string, kind notification.Kind, payload map[string]any) {
	if n == nil || n.repo == nil || recipientID == "" {
		return
	}

	id, err := n.idGen.NewID()
	if err != nil {
		n.logger.ErrorContext(ctx, "generate notification id", "error", err, "kind", kind)
		return
	}

	record := notification.Notification{
		ID:          id,
		RecipientID: recipientID,
		Kind:        kind,
		Payload:     payload,
		CreatedAt:   n.now().UTC(),
	}

	if err := n.repo.Create(ctx, record); err != nil {
		n.logger.ErrorContext(ctx, "persist notification",
			"error", err,
			"kind", kind,
			"recipient_id", recipientID,
		)
		return
	}

	if err := n.publisher.Publish(ctx, record); err != nil {
		n.logger.WarnContext(ctx, "publish notification",
			"error", err,
			"kind", kind,
			"notification_id", record.ID,
		)
	}
}
