package service

import (
	"context"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
)

type ledgerService struct {
	store repository.Store
}

func NewCreditLedger(store repository.Store) CreditLedger {
	return &ledgerService{store: store}
}

func (s *ledgerService) Adjust(ctx context.Context, userID, amount int32, p AdjustParams) (*domain.CreditTransaction, error) {
	var tx *domain.CreditTransaction
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		var err error
		tx, err = s.AdjustTx(ctx, st, userID, amount, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// AdjustTx reads the balance under a row lock, applies the amount, and
// appends the ledger row with the resulting balance snapshot. The balance
// update and the transaction row are never observable separately.
func (s *ledgerService) AdjustTx(ctx context.Context, st repository.Store, userID, amount int32, p AdjustParams) (*domain.CreditTransaction, error) {
	balance, err := st.Ledger().GetBalanceForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	newBalance := balance + amount
	if newBalance < 0 && !p.AllowNegative {
		return nil, domain.ValidationError("insufficient credits: balance %d, requested %d", balance, amount)
	}

	if err := st.Ledger().UpdateBalance(ctx, userID, newBalance); err != nil {
		return nil, err
	}

	tx := &domain.CreditTransaction{
		UserID:       userID,
		Amount:       amount,
		BalanceAfter: newBalance,
		Type:         p.Type,
		Reason:       p.Reason,
		PerformedBy:  p.PerformedBy,
		Metadata:     p.Metadata,
	}
	if err := st.Ledger().CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, userID int32) (int32, error) {
	return s.store.Ledger().GetBalance(ctx, userID)
}

func (s *ledgerService) GetTransactions(ctx context.Context, userID, page, pageSize int32) ([]domain.CreditTransaction, int32, error) {
	return s.store.Ledger().ListTransactions(ctx, userID, page, pageSize)
}

func (s *ledgerService) GetSummary(ctx context.Context, userID int32) (*domain.LedgerSummary, error) {
	return s.store.Ledger().GetSummary(ctx, userID)
}
