package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/riskibarqy/squadhub/internal/domain/notification"
)

const maxNotificationPageSize = 100

type NotificationService struct {
	notificationRepo notification.Repository
	logger           *slog.Logger
}

func NewNotificationService(notificationRepo notification.Repository, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (s *NotificationService) ListNotifications(ctx context.Context, recipientID string, limit int) ([]notification.Notification, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, fmt.Errorf("%w: recipient id is required", ErrInvalidInput)
	}
	if limit < 1 || limit > maxNotificationPageSize {
		limit = maxNotificationPageSize
	}

	records, err := s.notificationRepo.ListByRecipient(ctx, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return records, nil
}

// MarkRead flips a notification to read. Scoping the update to the recipient
// keeps one user from acknowledging another's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, recipientID string) error {
	notificationID = strings.TrimSpace(notificationID)
	recipientID = strings.TrimSpace(recipientID)
	if notificationID == "" || recipientID == "" {
		return fmt.Errorf("%w: notification id and recipient id are required", ErrInvalidInput)
	}

	if err := s.notificationRepo.MarkRead(ctx, notificationID, recipientID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return 0, fmt.Errorf("%w: recipient id is required", ErrInvalidInput)
	}

	count, err := s.notificationRepo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}
