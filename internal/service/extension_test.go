package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gearbook-backend/internal/domain"
)

func TestReservationService_CheckExtension(t *testing.T) {
	ctx := context.Background()
	reservation := &domain.Reservation{
		ID: 42, UserID: 7, ProductID: 1,
		StartDate: date(2026, 3, 2),
		EndDate:   date(2026, 3, 4),
		Status:    domain.ReservationStatusConfirmed,
	}
	product := &domain.Product{
		ID: 1, SectionID: 2,
		PricePerPeriod: 20,
		CreditPeriod:   domain.CreditPeriodWeek,
	}
	section := &domain.Section{ID: 2}
	deltaStart := date(2026, 3, 5)

	t.Run("Possible with partial week billed as full period", func(t *testing.T) {
		store := newMockStore()
		svc := newReservationService(store, nil)
		newEnd := date(2026, 3, 7)

		store.reservations.On("GetByID", ctx, int32(42)).Return(reservation, nil)
		store.products.On("GetByID", ctx, int32(1)).Return(product, nil)
		store.reservations.On("FindOverlapping", ctx, int32(1), deltaStart, newEnd,
			mock.AnythingOfType("*int32")).Return([]domain.Reservation{}, nil)
		store.sections.On("GetByID", ctx, int32(2)).Return(section, nil)
		store.sections.On("ClosuresInRange", ctx, int32(2), deltaStart, newEnd).
			Return([]domain.SectionClosure{}, nil)

		check, err := svc.CheckExtension(ctx, 42, newEnd)
		assert.NoError(t, err)
		assert.True(t, check.Possible)
		assert.Equal(t, int32(20), check.AdditionalCost) // 3 extra days round up to one week
	})

	t.Run("Blocked reports earliest conflict and latest possible end", func(t *testing.T) {
		store := newMockStore()
		svc := newReservationService(store, nil)
		newEnd := date(2026, 3, 10)

		blocking := domain.Reservation{ID: 9, StartDate: date(2026, 3, 8), EndDate: date(2026, 3, 12),
			Status: domain.ReservationStatusConfirmed}
		store.reservations.On("GetByID", ctx, int32(42)).Return(reservation, nil)
		store.products.On("GetByID", ctx, int32(1)).Return(product, nil)
		store.reservations.On("FindOverlapping", ctx, int32(1), deltaStart, newEnd,
			mock.AnythingOfType("*int32")).Return([]domain.Reservation{blocking}, nil)

		check, err := svc.CheckExtension(ctx, 42, newEnd)
		assert.NoError(t, err)
		assert.False(t, check.Possible)
		assert.Equal(t, int32(9), check.BlockingReservation.ID)
		assert.NotNil(t, check.LatestPossibleEnd)
		assert.Equal(t, date(2026, 3, 7), *check.LatestPossibleEnd)
	})

	t.Run("Blocked by return day rule", func(t *testing.T) {
		store := newMockStore()
		svc := newReservationService(store, nil)
		newEnd := date(2026, 3, 9) // Monday

		fridaysOnly := &domain.Section{ID: 2, AllowedDaysIn: []int32{5}}
		store.reservations.On("GetByID", ctx, int32(42)).Return(reservation, nil)
		store.products.On("GetByID", ctx, int32(1)).Return(product, nil)
		store.reservations.On("FindOverlapping", ctx, int32(1), deltaStart, newEnd,
			mock.AnythingOfType("*int32")).Return([]domain.Reservation{}, nil)
		store.sections.On("GetByID", ctx, int32(2)).Return(fridaysOnly, nil)
		store.sections.On("ClosuresInRange", ctx, int32(2), deltaStart, newEnd).
			Return([]domain.SectionClosure{}, nil)

		check, err := svc.CheckExtension(ctx, 42, newEnd)
		assert.NoError(t, err)
		assert.False(t, check.Possible)
		assert.Nil(t, check.BlockingReservation)
	})

	t.Run("New end not after current end", func(t *testing.T) {
		store := newMockStore()
		svc := newReservationService(store, nil)

		store.reservations.On("GetByID", ctx, int32(42)).Return(reservation, nil)

		_, err := svc.CheckExtension(ctx, 42, date(2026, 3, 4))
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("Cancelled reservation cannot be extended", func(t *testing.T) {
		store := newMockStore()
		svc := newReservationService(store, nil)

		cancelled := &domain.Reservation{ID: 42, UserID: 7, ProductID: 1,
			EndDate: date(2026, 3, 4), Status: domain.ReservationStatusCancelled}
		store.reservations.On("GetByID", ctx, int32(42)).Return(cancelled, nil)

		_, err := svc.CheckExtension(ctx, 42, date(2026, 3, 7))
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})
}

func TestReservationService_Extend(t *testing.T) {
	ctx := context.Background()
	product := &domain.Product{
		ID: 1, Name: "DJI Mavic 3", SectionID: 2,
		PricePerPeriod: 10,
		CreditPeriod:   domain.CreditPeriodDay,
	}
	section := &domain.Section{ID: 2}
	deltaStart := date(2026, 3, 5)

	newReservation := func() *domain.Reservation {
		return &domain.Reservation{
			ID: 42, UserID: 7, ProductID: 1,
			StartDate:      date(2026, 3, 2),
			EndDate:        date(2026, 3, 4),
			Status:         domain.ReservationStatusCheckedOut,
			CreditsCharged: 30,
		}
	}

	t.Run("Success charges the delta and applies the extension", func(t *testing.T) {
		store := newMockStore()
		svc := newReservationService(store, nil)
		newEnd := date(2026, 3, 6)

		store.reservations.On("GetByID", ctx, int32(42)).Return(newReservation(), nil)
		store.products.On("GetByID", ctx, int32(1)).Return(product, nil)
		store.products.On("Lock", ctx, int32(1)).Return(nil)
		store.reservations.On("FindOverlapping", ctx, int32(1), deltaStart, newEnd,
			mock.AnythingOfType("*int32")).Return([]domain.Reservation{}, nil)
		store.sections.On("GetByID", ctx, int32(2)).Return(section, nil)
		store.sections.On("ClosuresInRange", ctx, int32(2), deltaStart, newEnd).
			Return([]domain.SectionClosure{}, nil)
		store.ledger.On("GetBalanceForUpdate", ctx, int32(7)).Return(int32(50), nil)
		store.ledger.On("UpdateBalance", ctx, int32(7), int32(30)).Return(nil)
		store.ledger.On("CreateTransaction", ctx, mock.MatchedBy(func(tx *domain.CreditTransaction) bool {
			return tx.Type == domain.TransactionTypeExtensionCharge && tx.Amount == -20
		})).Return(nil)
		store.reservations.On("ApplyExtension", ctx, int32(42), newEnd, int32(20)).Return(nil)

		res, err := svc.Extend(ctx, 42, 7, newEnd)
		assert.NoError(t, err)
		assert.Equal(t, newEnd, res.EndDate)
		assert.Equal(t, int32(1), res.ExtensionCount)
		assert.Equal(t, int32(20), res.TotalExtensionCost)
		store.ledger.AssertExpectations(t)
	})

	t.Run("Blocked extension is a conflict", func(t *testing.T) {
		store := newMockStore()
		svc := newReservationService(store, nil)
		newEnd := date(2026, 3, 6)

		blocking := domain.Reservation{ID: 9, StartDate: date(2026, 3, 5), EndDate: date(2026, 3, 8),
			Status: domain.ReservationStatusConfirmed}
		store.reservations.On("GetByID", ctx, int32(42)).Return(newReservation(), nil)
		store.products.On("GetByID", ctx, int32(1)).Return(product, nil)
		store.products.On("Lock", ctx, int32(1)).Return(nil)
		store.reservations.On("FindOverlapping", ctx, int32(1), deltaStart, newEnd,
			mock.AnythingOfType("*int32")).Return([]domain.Reservation{blocking}, nil)

		_, err := svc.Extend(ctx, 42, 7, newEnd)
		assert.True(t, domain.IsKind(err, domain.KindConflict))
		store.reservations.AssertNotCalled(t, "ApplyExtension",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Extending someone else's reservation looks missing", func(t *testing.T) {
		store := newMockStore()
		svc := newReservationService(store, nil)

		store.reservations.On("GetByID", ctx, int32(42)).Return(newReservation(), nil)

		_, err := svc.Extend(ctx, 42, 8, date(2026, 3, 6))
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})

	t.Run("Maximum duration enforced across extensions", func(t *testing.T) {
		store := newMockStore()
		svc := newReservationService(store, nil)

		capped := &domain.Product{ID: 1, SectionID: 2, PricePerPeriod: 10,
			CreditPeriod: domain.CreditPeriodDay, MaxDuration: 7}
		store.reservations.On("GetByID", ctx, int32(42)).Return(newReservation(), nil)
		store.products.On("GetByID", ctx, int32(1)).Return(capped, nil)

		_, err := svc.Extend(ctx, 42, 7, date(2026, 3, 15))
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})
}
