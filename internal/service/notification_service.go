package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
)

// NotificationService serves the pull-based notification inbox. It never
// creates follow notifications itself; those are written and deleted
// inside the relationship transitions so they cannot drift out of sync
// with the requests they describe.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

func (s *NotificationService) List(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	return s.notificationRepo.GetByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// MarkAllRead flags every notification of the user as read. Read state
// is presentation only; a read follow-request notification still backs a
// live pending request.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
