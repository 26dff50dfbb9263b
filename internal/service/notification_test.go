package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gearbook-backend/internal/domain"
)

func TestNotificationService_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores in-app notification", func(t *testing.T) {
		store := newMockStore()
		svc := NewNotificationService(store, nil)

		user := &domain.User{ID: 7, Email: "kim@example.com", Active: true}
		store.users.On("GetByID", ctx, int32(7)).Return(user, nil)
		store.notifications.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == 7 && n.Type == domain.NotificationReservationConfirmed
		})).Return(nil)

		svc.Notify(ctx, 7, domain.NotificationReservationConfirmed,
			"Reservation confirmed", "See you Monday.", nil)
		store.notifications.AssertExpectations(t)
	})

	t.Run("Opted-out category is skipped", func(t *testing.T) {
		store := newMockStore()
		svc := NewNotificationService(store, nil)

		user := &domain.User{ID: 7, Email: "kim@example.com", Active: true,
			NotificationPrefs: map[string]bool{domain.NotificationCategoryCredit: false}}
		store.users.On("GetByID", ctx, int32(7)).Return(user, nil)

		svc.Notify(ctx, 7, domain.NotificationPenaltyApplied,
			"Penalty applied", "50 credits.", nil)
		store.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Opt-out is per category", func(t *testing.T) {
		store := newMockStore()
		svc := NewNotificationService(store, nil)

		user := &domain.User{ID: 7, Email: "kim@example.com", Active: true,
			NotificationPrefs: map[string]bool{domain.NotificationCategoryCredit: false}}
		store.users.On("GetByID", ctx, int32(7)).Return(user, nil)
		store.notifications.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)

		svc.Notify(ctx, 7, domain.NotificationReservationReturned,
			"Equipment returned", "Thanks.", nil)
		store.notifications.AssertNumberOfCalls(t, "Create", 1)
	})
}

func TestNotificationCategory(t *testing.T) {
	cases := map[string]string{
		domain.NotificationReservationConfirmed: domain.NotificationCategoryReservation,
		domain.NotificationReservationExtended:  domain.NotificationCategoryReservation,
		domain.NotificationReservationRefunded:  domain.NotificationCategoryCredit,
		domain.NotificationPenaltyApplied:       domain.NotificationCategoryCredit,
		domain.NotificationReturnReminder:       domain.NotificationCategoryReminder,
	}
	for notifType, category := range cases {
		n := &domain.Notification{Type: notifType}
		assert.Equal(t, category, n.Category(), notifType)
	}
}
