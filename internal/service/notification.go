package service

import (
	"context"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/logger"
	"gearbook-backend/internal/repository"
)

type notificationService struct {
	store repository.Store
	email EmailService // nil disables the email channel
}

func NewNotificationService(store repository.Store, email EmailService) NotificationService {
	return &notificationService{store: store, email: email}
}

// Notify writes the in-app notification and mirrors it to email, both
// best-effort. Callers invoke it after their transaction commits, so a
// delivery failure never rolls back the operation it announces.
func (s *notificationService) Notify(ctx context.Context, userID int32, notifType, title, message string, attrs map[string]string) {
	log := logger.WithService("notification")

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		log.Warn("failed to load user for notification", "user_id", userID, "error", err)
		return
	}

	note := &domain.Notification{
		UserID:     userID,
		Type:       notifType,
		Title:      title,
		Message:    message,
		Attributes: attrs,
	}
	if !user.WantsNotification(note.Category()) {
		return
	}

	if err := s.store.Notifications().Create(ctx, note); err != nil {
		log.Warn("failed to store notification", "user_id", userID, "type", notifType, "error", err)
	}

	if s.email != nil && user.Email != "" {
		// SMTP is slow; do not hold up the request path for it.
		go func() {
			if err := s.email.Send(context.Background(), user.Email, title, message); err != nil {
				log.Warn("failed to email notification", "user_id", userID, "type", notifType, "error", err)
			}
		}()
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID, page, pageSize int32) ([]domain.Notification, int32, error) {
	return s.store.Notifications().List(ctx, userID, page, pageSize)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	return s.store.Notifications().MarkAsRead(ctx, notificationID, userID)
}
