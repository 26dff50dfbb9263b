package jobs

import (
	"context"
	"time"

	"gearbook-backend/internal/logger"
)

// DisableInactiveUsers deactivates accounts that have not logged in for the
// configured number of months. Their ledger history stays intact.
func (jr *JobRunner) DisableInactiveUsers() {
	jr.runWithRecovery("DisableInactiveUsers", func() {
		ctx := context.Background()
		cutoff := time.Now().AddDate(0, -jr.config.Reservations.InactiveUserMonths, 0)

		count, err := jr.store.Users().DisableInactiveSince(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to disable inactive users", "error", err)
			return
		}
		logger.Info("Disabled inactive users", "count", count, "cutoff", cutoff.Format("2006-01-02"))
	})
}

// PurgeOldClosures deletes section closures that ended long enough ago to no
// longer matter for availability or reporting.
func (jr *JobRunner) PurgeOldClosures() {
	jr.runWithRecovery("PurgeOldClosures", func() {
		ctx := context.Background()
		cutoff := time.Now().AddDate(0, -jr.config.Reservations.ClosureRetentionMonths, 0)

		count, err := jr.store.Sections().DeleteClosuresEndedBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to purge old closures", "error", err)
			return
		}
		logger.Info("Purged old section closures", "count", count, "cutoff", cutoff.Format("2006-01-02"))
	})
}
