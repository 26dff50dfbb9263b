package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
)

type ledgerRepository struct {
	q DBTX
}

func NewLedgerRepository(q DBTX) repository.LedgerRepository {
	return &ledgerRepository{q: q}
}

func (r *ledgerRepository) GetBalanceForUpdate(ctx context.Context, userID int32) (int32, error) {
	var balance int32
	query := `SELECT credit_balance FROM users WHERE id = $1 FOR UPDATE`
	err := r.q.QueryRowContext(ctx, query, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NotFoundError("user %d not found", userID)
	}
	return balance, err
}

func (r *ledgerRepository) GetBalance(ctx context.Context, userID int32) (int32, error) {
	var balance int32
	query := `SELECT credit_balance FROM users WHERE id = $1`
	err := r.q.QueryRowContext(ctx, query, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NotFoundError("user %d not found", userID)
	}
	return balance, err
}

func (r *ledgerRepository) UpdateBalance(ctx context.Context, userID int32, balance int32) error {
	query := `UPDATE users SET credit_balance = $1, updated_on = NOW() WHERE id = $2`
	_, err := r.q.ExecContext(ctx, query, balance, userID)
	return err
}

func (r *ledgerRepository) CreateTransaction(ctx context.Context, tx *domain.CreditTransaction) error {
	metadata, err := marshalMetadata(tx.Metadata)
	if err != nil {
		return err
	}
	query := `INSERT INTO credit_transactions (user_id, amount, balance_after, type, reason, performed_by, metadata)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_on`
	return r.q.QueryRowContext(ctx, query, tx.UserID, tx.Amount, tx.BalanceAfter, tx.Type,
		tx.Reason, tx.PerformedBy, metadata).Scan(&tx.ID, &tx.CreatedOn)
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.CreditTransaction, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM credit_transactions WHERE user_id = $1`
	if err := r.q.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, user_id, amount, balance_after, type, COALESCE(reason, ''), performed_by, metadata, created_on
	          FROM credit_transactions WHERE user_id = $1 ORDER BY created_on DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []domain.CreditTransaction
	for rows.Next() {
		var tx domain.CreditTransaction
		var metadata []byte
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.BalanceAfter, &tx.Type,
			&tx.Reason, &tx.PerformedBy, &metadata, &tx.CreatedOn); err != nil {
			return nil, 0, err
		}
		if err := unmarshalMetadata(metadata, &tx.Metadata); err != nil {
			return nil, 0, err
		}
		txs = append(txs, tx)
	}
	return txs, count, rows.Err()
}

func (r *ledgerRepository) GetSummary(ctx context.Context, userID int32) (*domain.LedgerSummary, error) {
	summary := &domain.LedgerSummary{CountByType: make(map[string]int32)}

	balance, err := r.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary.Balance = balance

	query := `SELECT type, count(*),
	                 COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0),
	                 COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0)
	          FROM credit_transactions WHERE user_id = $1 GROUP BY type`
	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var txType string
		var count, debits, credits int32
		if err := rows.Scan(&txType, &count, &debits, &credits); err != nil {
			return nil, err
		}
		summary.CountByType[txType] = count
		switch domain.TransactionType(txType) {
		case domain.TransactionTypeReservationCharge, domain.TransactionTypeExtensionCharge:
			summary.TotalCharged += debits
		case domain.TransactionTypeRefund:
			summary.TotalRefunded += credits
		case domain.TransactionTypePenalty:
			summary.TotalPenalties += debits
		}
	}
	return summary, rows.Err()
}

func marshalMetadata(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

func unmarshalMetadata(data []byte, dst *map[string]string) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
