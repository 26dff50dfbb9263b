package domain

import "time"

type TransactionType string

const (
	TransactionTypeAdjustment        TransactionType = "ADJUSTMENT"
	TransactionTypeReservationCharge TransactionType = "RESERVATION_CHARGE"
	TransactionTypeRefund            TransactionType = "REFUND"
	TransactionTypePenalty           TransactionType = "PENALTY"
	TransactionTypeExtensionCharge   TransactionType = "EXTENSION_CHARGE"
)

// CreditTransaction is one row of the append-only credit ledger.
// User.CreditBalance always equals the sum of the user's transaction amounts;
// every balance mutation writes a transaction row in the same database
// transaction.
type CreditTransaction struct {
	ID           int32             `json:"id"`
	UserID       int32             `json:"user_id"`
	Amount       int32             `json:"amount"` // positive = credit, negative = debit
	BalanceAfter int32             `json:"balance_after"`
	Type         TransactionType   `json:"type"`
	Reason       string            `json:"reason"`
	PerformedBy  int32             `json:"performed_by"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedOn    time.Time         `json:"created_on"`
}

type LedgerSummary struct {
	Balance        int32            `json:"balance"`
	TotalCharged   int32            `json:"total_charged"`
	TotalRefunded  int32            `json:"total_refunded"`
	TotalPenalties int32            `json:"total_penalties"`
	CountByType    map[string]int32 `json:"count_by_type"`
}
