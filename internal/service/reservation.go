package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gearbook-backend/internal/cache"
	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
	"gearbook-backend/internal/security"
	"gearbook-backend/internal/utils"
)

type reservationService struct {
	store        repository.Store
	availability AvailabilityService
	ledger       CreditLedger
	movements    MovementRecorder
	qr           security.QRCodec
	calendar     *cache.AvailabilityCache
	audit        AuditSink
	notifier     NotificationSink
}

func NewReservationService(
	store repository.Store,
	availability AvailabilityService,
	ledger CreditLedger,
	movements MovementRecorder,
	qr security.QRCodec,
	calendar *cache.AvailabilityCache,
	audit AuditSink,
	notifier NotificationSink,
) ReservationService {
	return &reservationService{
		store:        store,
		availability: availability,
		ledger:       ledger,
		movements:    movements,
		qr:           qr,
		calendar:     calendar,
		audit:        audit,
		notifier:     notifier,
	}
}

func reservationMetadata(id int32) map[string]string {
	return map[string]string{"reservation_id": strconv.FormatInt(int64(id), 10)}
}

func conflictError(conflicts []domain.Reservation) error {
	parts := make([]string, 0, len(conflicts))
	for i := range conflicts {
		c := &conflicts[i]
		parts = append(parts, fmt.Sprintf("#%d (%s to %s)", c.ID,
			c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02")))
	}
	return domain.ConflictError("dates not available, blocked by reservation %s", strings.Join(parts, ", "))
}

func (s *reservationService) Create(ctx context.Context, p CreateReservationParams) (*domain.Reservation, error) {
	start := utils.NormalizeDate(p.StartDate)
	end := utils.NormalizeDate(p.EndDate)
	if end.Before(start) {
		return nil, domain.ValidationError("end date %s before start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	actor := p.PerformedBy
	if actor == 0 {
		actor = p.UserID
	}

	var reservation *domain.Reservation
	var product *domain.Product
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		product, err = st.Products().GetByID(ctx, p.ProductID)
		if err != nil {
			return err
		}
		if !product.AcceptsReservations() {
			return domain.ValidationError("product %q does not accept reservations while %s", product.Name, product.Status)
		}

		days := utils.DurationDays(start, end)
		if days < product.MinDuration {
			return domain.ValidationError("duration %d days below minimum of %d", days, product.MinDuration)
		}
		if product.MaxDuration > 0 && days > product.MaxDuration {
			return domain.ValidationError("duration %d days above maximum of %d", days, product.MaxDuration)
		}

		// Serializes concurrent check-then-insert sequences per product;
		// the schema exclusion constraint backstops it.
		if err := st.Products().Lock(ctx, p.ProductID); err != nil {
			return err
		}

		avail, err := s.availability.CheckTx(ctx, st, product, start, end, nil)
		if err != nil {
			return err
		}
		if !avail.Available {
			if len(avail.Conflicts) > 0 {
				return conflictError(avail.Conflicts)
			}
			if len(avail.Closures) > 0 {
				c := avail.Closures[0]
				return domain.ValidationError("section closed from %s to %s",
					c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"))
			}
			return domain.ValidationError("%s", avail.DayRuleViolation)
		}

		cost, err := utils.ReservationCost(product, start, end)
		if err != nil {
			return domain.ValidationError("%v", err)
		}

		reservation = &domain.Reservation{
			UserID:         p.UserID,
			ProductID:      p.ProductID,
			StartDate:      start,
			EndDate:        end,
			Status:         domain.ReservationStatusConfirmed,
			CreditsCharged: cost,
			Notes:          p.Notes,
		}
		if err := st.Reservations().Create(ctx, reservation); err != nil {
			return err
		}

		_, err = s.ledger.AdjustTx(ctx, st, p.UserID, -cost, AdjustParams{
			Type:        domain.TransactionTypeReservationCharge,
			Reason:      fmt.Sprintf("Reservation #%d for %s", reservation.ID, product.Name),
			PerformedBy: actor,
			Metadata:    reservationMetadata(reservation.ID),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.calendar.InvalidateRange(ctx, p.ProductID, start, end)
	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: actor,
		Action:      domain.AuditReservationCreate,
		TargetType:  "reservation",
		TargetID:    reservation.ID,
		Metadata: map[string]string{
			"product_id": strconv.FormatInt(int64(p.ProductID), 10),
			"cost":       strconv.FormatInt(int64(reservation.CreditsCharged), 10),
		},
	})
	s.notifier.Notify(ctx, p.UserID, domain.NotificationReservationConfirmed,
		"Reservation confirmed",
		fmt.Sprintf("%s is reserved for you from %s to %s (%d credits).", product.Name,
			start.Format("2006-01-02"), end.Format("2006-01-02"), reservation.CreditsCharged),
		reservationMetadata(reservation.ID))
	return reservation, nil
}

func (s *reservationService) Cancel(ctx context.Context, reservationID, actorID int32, reason string) (*domain.Reservation, error) {
	var reservation *domain.Reservation
	var refund int32
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		reservation, err = st.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		switch reservation.Status {
		case domain.ReservationStatusConfirmed:
		case domain.ReservationStatusCheckedOut:
			return domain.ValidationError("reservation %d is checked out and can only be returned", reservationID)
		default:
			return domain.ValidationError("reservation %d cannot be cancelled from status %s", reservationID, reservation.Status)
		}

		product, err := st.Products().GetByID(ctx, reservation.ProductID)
		if err != nil {
			return err
		}
		section, err := st.Sections().GetByID(ctx, product.SectionID)
		if err != nil {
			return err
		}

		ok, err := st.Reservations().UpdateStatus(ctx, reservationID,
			domain.ReservationStatusConfirmed, domain.ReservationStatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ConflictError("reservation %d changed status concurrently", reservationID)
		}
		reservation.Status = domain.ReservationStatusCancelled

		refundDeadline := reservation.StartDate.Add(-time.Duration(section.RefundDeadlineHours) * time.Hour)
		if time.Now().Before(refundDeadline) && reservation.TotalCharged() > 0 {
			refund = reservation.TotalCharged()
			_, err = s.ledger.AdjustTx(ctx, st, reservation.UserID, refund, AdjustParams{
				Type:        domain.TransactionTypeRefund,
				Reason:      fmt.Sprintf("Cancellation refund for reservation #%d", reservationID),
				PerformedBy: actorID,
				Metadata:    reservationMetadata(reservationID),
			})
			if err != nil {
				return err
			}
			if err := st.Reservations().MarkRefunded(ctx, reservationID, refund); err != nil {
				return err
			}
			reservation.Refunded = true
			reservation.RefundedAmount += refund
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.calendar.InvalidateRange(ctx, reservation.ProductID, reservation.StartDate, reservation.EndDate)
	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: actorID,
		Action:      domain.AuditReservationCancel,
		TargetType:  "reservation",
		TargetID:    reservationID,
		Metadata: map[string]string{
			"reason":   reason,
			"refunded": strconv.FormatInt(int64(refund), 10),
		},
	})
	message := "Your reservation was cancelled."
	if refund > 0 {
		message = fmt.Sprintf("Your reservation was cancelled and %d credits were refunded.", refund)
	}
	s.notifier.Notify(ctx, reservation.UserID, domain.NotificationReservationCancelled,
		"Reservation cancelled", message, reservationMetadata(reservationID))
	return reservation, nil
}

func (s *reservationService) Checkout(ctx context.Context, reservationID, adminID int32, notes string) (*domain.Reservation, error) {
	var reservation *domain.Reservation
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		reservation, err = st.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if reservation.Status != domain.ReservationStatusConfirmed {
			return domain.ValidationError("reservation %d cannot be checked out from status %s", reservationID, reservation.Status)
		}

		// Re-validated at the transaction boundary: a concurrent checkout
		// that won the race leaves zero rows to update here.
		ok, err := st.Reservations().UpdateStatus(ctx, reservationID,
			domain.ReservationStatusConfirmed, domain.ReservationStatusCheckedOut)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ConflictError("reservation %d was already checked out", reservationID)
		}
		reservation.Status = domain.ReservationStatusCheckedOut

		_, err = s.movements.RecordTx(ctx, st, CreateMovementParams{
			ProductID:     reservation.ProductID,
			ReservationID: &reservationID,
			Type:          domain.MovementTypeCheckout,
			Notes:         notes,
			PerformedBy:   adminID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: adminID,
		Action:      domain.AuditReservationCheckout,
		TargetType:  "reservation",
		TargetID:    reservationID,
	})
	s.notifier.Notify(ctx, reservation.UserID, domain.NotificationReservationCheckedOut,
		"Equipment picked up",
		fmt.Sprintf("Your reservation is checked out until %s.", reservation.EndDate.Format("2006-01-02")),
		reservationMetadata(reservationID))
	return reservation, nil
}

func (s *reservationService) Return(ctx context.Context, p ReturnParams) (*domain.Reservation, error) {
	var reservation *domain.Reservation
	condition := p.Condition
	if condition == "" {
		condition = domain.ConditionOK
	}
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		reservation, err = st.Reservations().GetByID(ctx, p.ReservationID)
		if err != nil {
			return err
		}
		if reservation.Status != domain.ReservationStatusCheckedOut {
			return domain.ValidationError("reservation %d cannot be returned from status %s", p.ReservationID, reservation.Status)
		}

		ok, err := st.Reservations().UpdateStatus(ctx, p.ReservationID,
			domain.ReservationStatusCheckedOut, domain.ReservationStatusReturned)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ConflictError("reservation %d was already returned", p.ReservationID)
		}
		reservation.Status = domain.ReservationStatusReturned

		_, err = s.movements.RecordTx(ctx, st, CreateMovementParams{
			ProductID:     reservation.ProductID,
			ReservationID: &p.ReservationID,
			Type:          domain.MovementTypeReturn,
			Condition:     condition,
			Notes:         p.Notes,
			Photos:        p.Photos,
			PerformedBy:   p.AdminID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.calendar.InvalidateRange(ctx, reservation.ProductID, reservation.StartDate, reservation.EndDate)
	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: p.AdminID,
		Action:      domain.AuditReservationReturn,
		TargetType:  "reservation",
		TargetID:    p.ReservationID,
		Metadata:    map[string]string{"condition": string(condition)},
	})
	message := "Thanks, your return is recorded."
	if condition.Damaged() {
		// Damage is recorded only; penalties are a separate admin action.
		message = fmt.Sprintf("Your return is recorded with condition %s.", condition)
	}
	s.notifier.Notify(ctx, reservation.UserID, domain.NotificationReservationReturned,
		"Equipment returned", message, reservationMetadata(p.ReservationID))
	return reservation, nil
}

func (s *reservationService) Refund(ctx context.Context, p RefundParams) (*domain.Reservation, error) {
	var reservation *domain.Reservation
	var amount int32
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		reservation, err = st.Reservations().GetByID(ctx, p.ReservationID)
		if err != nil {
			return err
		}
		amount = p.Amount
		if amount == 0 {
			amount = reservation.TotalCharged()
		}
		if amount <= 0 {
			return domain.ValidationError("refund amount must be positive")
		}

		_, err = s.ledger.AdjustTx(ctx, st, reservation.UserID, amount, AdjustParams{
			Type:        domain.TransactionTypeRefund,
			Reason:      refundReason(p.Reason, p.ReservationID),
			PerformedBy: p.PerformedBy,
			Metadata:    reservationMetadata(p.ReservationID),
		})
		if err != nil {
			return err
		}
		if err := st.Reservations().MarkRefunded(ctx, p.ReservationID, amount); err != nil {
			return err
		}
		reservation.Refunded = true
		reservation.RefundedAmount += amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: p.PerformedBy,
		Action:      domain.AuditReservationRefund,
		TargetType:  "reservation",
		TargetID:    p.ReservationID,
		Metadata: map[string]string{
			"amount": strconv.FormatInt(int64(amount), 10),
			"reason": p.Reason,
		},
	})
	s.notifier.Notify(ctx, reservation.UserID, domain.NotificationReservationRefunded,
		"Credits refunded",
		fmt.Sprintf("%d credits were refunded for your reservation.", amount),
		reservationMetadata(p.ReservationID))
	return reservation, nil
}

func refundReason(reason string, reservationID int32) string {
	if reason != "" {
		return reason
	}
	return fmt.Sprintf("Refund for reservation #%d", reservationID)
}

func (s *reservationService) Penalty(ctx context.Context, p PenaltyParams) (*domain.Reservation, error) {
	if p.Amount <= 0 {
		return nil, domain.ValidationError("penalty amount must be positive")
	}
	if p.Reason == "" {
		return nil, domain.ValidationError("penalty reason is required")
	}

	var reservation *domain.Reservation
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		reservation, err = st.Reservations().GetByID(ctx, p.ReservationID)
		if err != nil {
			return err
		}
		// Penalties may push the balance below zero; this is the only
		// path allowed to do so.
		_, err = s.ledger.AdjustTx(ctx, st, reservation.UserID, -p.Amount, AdjustParams{
			Type:          domain.TransactionTypePenalty,
			Reason:        p.Reason,
			PerformedBy:   p.PerformedBy,
			Metadata:      reservationMetadata(p.ReservationID),
			AllowNegative: true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: p.PerformedBy,
		Action:      domain.AuditReservationPenalty,
		TargetType:  "reservation",
		TargetID:    p.ReservationID,
		Metadata: map[string]string{
			"amount": strconv.FormatInt(int64(p.Amount), 10),
			"reason": p.Reason,
		},
	})
	s.notifier.Notify(ctx, reservation.UserID, domain.NotificationPenaltyApplied,
		"Penalty applied",
		fmt.Sprintf("A penalty of %d credits was applied: %s", p.Amount, p.Reason),
		reservationMetadata(p.ReservationID))
	return reservation, nil
}

func (s *reservationService) SetAdminNotes(ctx context.Context, reservationID, adminID int32, notes string) (*domain.Reservation, error) {
	reservation, err := s.store.Reservations().GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Reservations().UpdateAdminNotes(ctx, reservationID, notes); err != nil {
		return nil, err
	}
	reservation.AdminNotes = notes

	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: adminID,
		Action:      domain.AuditReservationNotes,
		TargetType:  "reservation",
		TargetID:    reservationID,
	})
	return reservation, nil
}

func (s *reservationService) Get(ctx context.Context, reservationID int32) (*domain.Reservation, error) {
	return s.store.Reservations().GetByID(ctx, reservationID)
}

func (s *reservationService) GetForUser(ctx context.Context, reservationID, userID int32) (*domain.Reservation, error) {
	reservation, err := s.store.Reservations().GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != userID {
		// Indistinguishable from a missing reservation on purpose.
		return nil, domain.NotFoundError("reservation %d not found", reservationID)
	}
	return reservation, nil
}

func (s *reservationService) ListForUser(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	return s.store.Reservations().ListByUser(ctx, userID, status, page, pageSize)
}

func (s *reservationService) ListForProduct(ctx context.Context, productID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	return s.store.Reservations().ListByProduct(ctx, productID, status, page, pageSize)
}

func (s *reservationService) QRCodePayload(ctx context.Context, reservationID int32) (string, error) {
	if _, err := s.store.Reservations().GetByID(ctx, reservationID); err != nil {
		return "", err
	}
	return s.qr.GenerateReservationCode(reservationID)
}

func (s *reservationService) ResolveQRCode(ctx context.Context, payload string) (*domain.Reservation, error) {
	reservationID, err := s.qr.VerifyReservationCode(payload)
	if err != nil {
		return nil, err
	}
	return s.store.Reservations().GetByID(ctx, reservationID)
}
