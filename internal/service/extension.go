package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
	"gearbook-backend/internal/utils"
)

// checkExtensionTx evaluates only the delta interval, the days strictly after
// the current end date. The already-held range never conflicts with itself.
func (s *reservationService) checkExtensionTx(ctx context.Context, st repository.Store, reservation *domain.Reservation, product *domain.Product, newEnd time.Time) (*ExtensionCheck, error) {
	deltaStart := reservation.EndDate.AddDate(0, 0, 1)

	conflicts, err := st.Reservations().FindOverlapping(ctx, product.ID, deltaStart, newEnd, &reservation.ID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		blocking := conflicts[0]
		for i := range conflicts {
			if conflicts[i].StartDate.Before(blocking.StartDate) {
				blocking = conflicts[i]
			}
		}
		check := &ExtensionCheck{BlockingReservation: &blocking}
		latest := blocking.StartDate.AddDate(0, 0, -1)
		if latest.After(reservation.EndDate) {
			check.LatestPossibleEnd = &latest
		}
		return check, nil
	}

	section, err := st.Sections().GetByID(ctx, product.SectionID)
	if err != nil {
		return nil, err
	}
	closures, err := st.Sections().ClosuresInRange(ctx, product.SectionID, deltaStart, newEnd)
	if err != nil {
		return nil, err
	}
	if len(closures) > 0 || !section.AllowsReturnOn(newEnd.Weekday()) {
		return &ExtensionCheck{}, nil
	}

	cost, err := utils.ExtensionCost(product, reservation.EndDate, newEnd)
	if err != nil {
		return nil, domain.ValidationError("%v", err)
	}
	return &ExtensionCheck{Possible: true, AdditionalCost: cost}, nil
}

func (s *reservationService) CheckExtension(ctx context.Context, reservationID int32, newEnd time.Time) (*ExtensionCheck, error) {
	newEnd = utils.NormalizeDate(newEnd)

	reservation, err := s.store.Reservations().GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !reservation.Status.Blocking() {
		return nil, domain.ValidationError("reservation %d cannot be extended from status %s", reservationID, reservation.Status)
	}
	if !newEnd.After(reservation.EndDate) {
		return nil, domain.ValidationError("new end date must be after current end date %s",
			reservation.EndDate.Format("2006-01-02"))
	}

	product, err := s.store.Products().GetByID(ctx, reservation.ProductID)
	if err != nil {
		return nil, err
	}
	if product.MaxDuration > 0 && utils.DurationDays(reservation.StartDate, newEnd) > product.MaxDuration {
		return nil, domain.ValidationError("extended duration exceeds maximum of %d days", product.MaxDuration)
	}
	return s.checkExtensionTx(ctx, s.store, reservation, product, newEnd)
}

func (s *reservationService) Extend(ctx context.Context, reservationID, userID int32, newEnd time.Time) (*domain.Reservation, error) {
	newEnd = utils.NormalizeDate(newEnd)

	var reservation *domain.Reservation
	var product *domain.Product
	var cost int32
	var oldEnd time.Time
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		reservation, err = st.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if reservation.UserID != userID {
			return domain.NotFoundError("reservation %d not found", reservationID)
		}
		if !reservation.Status.Blocking() {
			return domain.ValidationError("reservation %d cannot be extended from status %s", reservationID, reservation.Status)
		}
		if !newEnd.After(reservation.EndDate) {
			return domain.ValidationError("new end date must be after current end date %s",
				reservation.EndDate.Format("2006-01-02"))
		}

		product, err = st.Products().GetByID(ctx, reservation.ProductID)
		if err != nil {
			return err
		}
		if product.MaxDuration > 0 && utils.DurationDays(reservation.StartDate, newEnd) > product.MaxDuration {
			return domain.ValidationError("extended duration exceeds maximum of %d days", product.MaxDuration)
		}

		// Same lock as Create; two extensions or an extension racing a
		// create serialize here, the exclusion constraint backstops.
		if err := st.Products().Lock(ctx, reservation.ProductID); err != nil {
			return err
		}

		check, err := s.checkExtensionTx(ctx, st, reservation, product, newEnd)
		if err != nil {
			return err
		}
		if !check.Possible {
			if check.BlockingReservation != nil {
				return conflictError([]domain.Reservation{*check.BlockingReservation})
			}
			return domain.ValidationError("product is not available through %s", newEnd.Format("2006-01-02"))
		}
		cost = check.AdditionalCost

		if cost > 0 {
			_, err = s.ledger.AdjustTx(ctx, st, reservation.UserID, -cost, AdjustParams{
				Type:        domain.TransactionTypeExtensionCharge,
				Reason:      fmt.Sprintf("Extension of reservation #%d to %s", reservationID, newEnd.Format("2006-01-02")),
				PerformedBy: userID,
				Metadata:    reservationMetadata(reservationID),
			})
			if err != nil {
				return err
			}
		}

		if err := st.Reservations().ApplyExtension(ctx, reservationID, newEnd, cost); err != nil {
			return err
		}
		oldEnd = reservation.EndDate
		reservation.EndDate = newEnd
		reservation.ExtensionCount++
		reservation.TotalExtensionCost += cost
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.calendar.InvalidateRange(ctx, reservation.ProductID, oldEnd, newEnd)
	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: userID,
		Action:      domain.AuditReservationExtend,
		TargetType:  "reservation",
		TargetID:    reservationID,
		Metadata: map[string]string{
			"new_end": newEnd.Format("2006-01-02"),
			"cost":    strconv.FormatInt(int64(cost), 10),
		},
	})
	s.notifier.Notify(ctx, reservation.UserID, domain.NotificationReservationExtended,
		"Reservation extended",
		fmt.Sprintf("%s is now yours until %s (%d additional credits).", product.Name,
			newEnd.Format("2006-01-02"), cost),
		reservationMetadata(reservationID))
	return reservation, nil
}
