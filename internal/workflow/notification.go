package workflow

import (
	"context"

	"github.com/kdiomande/rewards-platform/internal/auth"
	"github.com/kdiomande/rewards-platform/internal/notification"
	"github.com/kdiomande/rewards-platform/internal/storage"
)

// NotificationService lets a principal read their own message log.
type NotificationService struct {
	db storage.DB
}

func NewNotificationService(db storage.DB) *NotificationService {
	return &NotificationService{db: db}
}

// List returns the principal's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, p *auth.Principal) ([]notification.Notification, error) {
	if err := auth.Authorize(p, auth.OpListNotifications); err != nil {
		return nil, err
	}
	return s.db.Notifications().ListByAccount(ctx, p.AccountID)
}
