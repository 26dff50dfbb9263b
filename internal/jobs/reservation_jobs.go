package jobs

import (
	"context"
	"fmt"
	"time"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/logger"
	"gearbook-backend/internal/utils"
)

// SendReturnReminders notifies users whose reservation ends soon, both in-app
// and by email. Which day counts as "soon" is configurable.
func (jr *JobRunner) SendReturnReminders() {
	jr.runWithRecovery("SendReturnReminders", func() {
		ctx := context.Background()
		target := utils.NormalizeDate(time.Now().AddDate(0, 0, jr.config.Reservations.ReminderDaysAhead))

		reservations, err := jr.store.Reservations().ListEndingOn(ctx, target)
		if err != nil {
			logger.Error("Failed to list reservations for reminders", "error", err)
			return
		}

		sent := 0
		for i := range reservations {
			r := &reservations[i]
			user, err := jr.store.Users().GetByID(ctx, r.UserID)
			if err != nil {
				logger.Error("Failed to load user for reminder", "user_id", r.UserID, "error", err)
				continue
			}
			if !user.WantsNotification(domain.NotificationCategoryReminder) {
				continue
			}
			product, err := jr.store.Products().GetByID(ctx, r.ProductID)
			if err != nil {
				logger.Error("Failed to load product for reminder", "product_id", r.ProductID, "error", err)
				continue
			}

			note := &domain.Notification{
				UserID:  r.UserID,
				Type:    domain.NotificationReturnReminder,
				Title:   "Return reminder",
				Message: fmt.Sprintf("Your reservation of %s ends on %s.", product.Name, r.EndDate.Format("2006-01-02")),
			}
			if err := jr.store.Notifications().Create(ctx, note); err != nil {
				logger.Error("Failed to store return reminder", "reservation_id", r.ID, "error", err)
			}

			if jr.services.Email != nil && user.Email != "" {
				if err := jr.services.Email.SendReturnReminder(ctx, user.Email, user.Name, product.Name, r.EndDate); err != nil {
					logger.Error("Failed to email return reminder", "reservation_id", r.ID, "error", err)
					continue
				}
			}
			sent++
		}

		logger.Info("Sent return reminders", "count", sent, "end_date", target.Format("2006-01-02"))
	})
}
