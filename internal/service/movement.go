package service

import (
	"context"
	"fmt"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
)

type movementService struct {
	store repository.Store
}

func NewMovementRecorder(store repository.Store) MovementRecorder {
	return &movementService{store: store}
}

func (s *movementService) Record(ctx context.Context, p CreateMovementParams) (*domain.ProductMovement, error) {
	var movement *domain.ProductMovement
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		movement, err = s.RecordTx(ctx, st, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// RecordTx writes the movement with its ordered photos and updates the
// product's last-known condition in the caller's transaction.
func (s *movementService) RecordTx(ctx context.Context, st repository.Store, p CreateMovementParams) (*domain.ProductMovement, error) {
	if p.Type != domain.MovementTypeCheckout && p.Type != domain.MovementTypeReturn {
		return nil, domain.ValidationError("unknown movement type %q", p.Type)
	}
	condition := p.Condition
	if condition == "" {
		// checkout without explicit inspection
		condition = domain.ConditionOK
	}
	if !condition.Valid() {
		return nil, domain.ValidationError("unknown product condition %q", condition)
	}

	if _, err := st.Products().GetByID(ctx, p.ProductID); err != nil {
		return nil, err
	}

	if p.ReservationID != nil {
		// One physical checkout and one return per reservation; the status
		// CAS guards the reservation row, this guards the movement log.
		count, err := st.Movements().CountByReservationAndType(ctx, *p.ReservationID, p.Type)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, domain.ConflictError("reservation %d already has a %s movement", *p.ReservationID, p.Type)
		}
	}

	movement := &domain.ProductMovement{
		ProductID:     p.ProductID,
		ReservationID: p.ReservationID,
		Type:          p.Type,
		Condition:     condition,
		Notes:         p.Notes,
		Photos:        p.Photos,
		PerformedBy:   p.PerformedBy,
	}
	if err := st.Movements().Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("create movement: %w", err)
	}

	if err := st.Products().SetLastMovement(ctx, p.ProductID, condition, movement.PerformedAt); err != nil {
		return nil, fmt.Errorf("update product condition: %w", err)
	}
	return movement, nil
}

func (s *movementService) ListByReservation(ctx context.Context, reservationID int32) ([]domain.ProductMovement, error) {
	return s.store.Movements().ListByReservation(ctx, reservationID)
}

func (s *movementService) ListByProduct(ctx context.Context, productID int32, page, pageSize int32) ([]domain.ProductMovement, int32, error) {
	return s.store.Movements().ListByProduct(ctx, productID, page, pageSize)
}
