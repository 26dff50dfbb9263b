package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gearbook-backend/internal/domain"
)

func TestCreditLedger_Adjust(t *testing.T) {
	ctx := context.Background()
	userID := int32(7)

	t.Run("Grant", func(t *testing.T) {
		store := newMockStore()
		svc := NewCreditLedger(store)

		store.ledger.On("GetBalanceForUpdate", ctx, userID).Return(int32(10), nil)
		store.ledger.On("UpdateBalance", ctx, userID, int32(35)).Return(nil)
		store.ledger.On("CreateTransaction", ctx, mock.AnythingOfType("*domain.CreditTransaction")).Return(nil)

		tx, err := svc.Adjust(ctx, userID, 25, AdjustParams{
			Type:        domain.TransactionTypeAdjustment,
			Reason:      "Season top-up",
			PerformedBy: 1,
		})
		assert.NoError(t, err)
		assert.Equal(t, int32(25), tx.Amount)
		assert.Equal(t, int32(35), tx.BalanceAfter)
		assert.Equal(t, domain.TransactionTypeAdjustment, tx.Type)
		store.ledger.AssertExpectations(t)
	})

	t.Run("Insufficient credits", func(t *testing.T) {
		store := newMockStore()
		svc := NewCreditLedger(store)

		store.ledger.On("GetBalanceForUpdate", ctx, userID).Return(int32(10), nil)

		tx, err := svc.Adjust(ctx, userID, -25, AdjustParams{
			Type:   domain.TransactionTypeReservationCharge,
			Reason: "Reservation #1",
		})
		assert.Error(t, err)
		assert.Nil(t, tx)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
		store.ledger.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything)
		store.ledger.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	})

	t.Run("Penalty may go negative", func(t *testing.T) {
		store := newMockStore()
		svc := NewCreditLedger(store)

		store.ledger.On("GetBalanceForUpdate", ctx, userID).Return(int32(10), nil)
		store.ledger.On("UpdateBalance", ctx, userID, int32(-15)).Return(nil)
		store.ledger.On("CreateTransaction", ctx, mock.AnythingOfType("*domain.CreditTransaction")).Return(nil)

		tx, err := svc.Adjust(ctx, userID, -25, AdjustParams{
			Type:          domain.TransactionTypePenalty,
			Reason:        "Broken tripod",
			AllowNegative: true,
		})
		assert.NoError(t, err)
		assert.Equal(t, int32(-15), tx.BalanceAfter)
		store.ledger.AssertExpectations(t)
	})

	t.Run("Exact balance to zero", func(t *testing.T) {
		store := newMockStore()
		svc := NewCreditLedger(store)

		store.ledger.On("GetBalanceForUpdate", ctx, userID).Return(int32(25), nil)
		store.ledger.On("UpdateBalance", ctx, userID, int32(0)).Return(nil)
		store.ledger.On("CreateTransaction", ctx, mock.AnythingOfType("*domain.CreditTransaction")).Return(nil)

		tx, err := svc.Adjust(ctx, userID, -25, AdjustParams{
			Type:   domain.TransactionTypeReservationCharge,
			Reason: "Reservation #2",
		})
		assert.NoError(t, err)
		assert.Equal(t, int32(0), tx.BalanceAfter)
	})
}
