package repository

import (
	"context"
	"time"

	"gearbook-backend/internal/domain"
)

// Store bundles all repositories behind one handle and makes transaction
// boundaries explicit: ExecTx runs fn against a Store whose repositories
// share a single database transaction. Calling ExecTx on a transactional
// Store reuses the open transaction.
type Store interface {
	Users() UserRepository
	Sections() SectionRepository
	Products() ProductRepository
	Reservations() ReservationRepository
	Movements() MovementRepository
	Ledger() LedgerRepository
	Notifications() NotificationRepository
	Audit() AuditRepository

	ExecTx(ctx context.Context, fn func(Store) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	DisableInactiveSince(ctx context.Context, cutoff time.Time) (int64, error)
}

type SectionRepository interface {
	Create(ctx context.Context, section *domain.Section) error
	GetByID(ctx context.Context, id int32) (*domain.Section, error)
	List(ctx context.Context) ([]domain.Section, error)
	Update(ctx context.Context, section *domain.Section) error
	Delete(ctx context.Context, id int32) error

	CreateClosure(ctx context.Context, closure *domain.SectionClosure) error
	DeleteClosure(ctx context.Context, id int32) error
	// ClosuresInRange returns closures of the section overlapping
	// [start, end], both bounds inclusive.
	ClosuresInRange(ctx context.Context, sectionID int32, start, end time.Time) ([]domain.SectionClosure, error)
	DeleteClosuresEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id int32) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	UpdateStatus(ctx context.Context, id int32, status domain.ProductStatus) error
	ListBySection(ctx context.Context, sectionID int32, page, pageSize int32) ([]domain.Product, int32, error)
	// SetLastMovement records the product's last-known condition and
	// movement time; only the movement recorder calls this.
	SetLastMovement(ctx context.Context, id int32, condition domain.ProductCondition, at time.Time) error
	// Lock takes a transaction-scoped advisory lock on the product,
	// serializing concurrent availability-check-then-insert sequences.
	// Must be called inside ExecTx.
	Lock(ctx context.Context, id int32) error
}

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id int32) (*domain.Reservation, error)
	// FindOverlapping returns reservations of the product in a blocking
	// status whose [start_date, end_date] overlaps [start, end], bounds
	// inclusive. excludeID removes one reservation from the result set.
	FindOverlapping(ctx context.Context, productID int32, start, end time.Time, excludeID *int32) ([]domain.Reservation, error)
	// FindBlockingInMonth returns blocking reservations overlapping the
	// given month, for the availability calendar.
	FindBlockingInMonth(ctx context.Context, productID int32, monthStart, monthEnd time.Time) ([]domain.Reservation, error)
	// UpdateStatus transitions from -> to atomically and reports whether a
	// row changed; false means the precondition no longer held.
	UpdateStatus(ctx context.Context, id int32, from, to domain.ReservationStatus) (bool, error)
	MarkRefunded(ctx context.Context, id int32, amount int32) error
	// ApplyExtension moves end_date out and accumulates the extension cost.
	ApplyExtension(ctx context.Context, id int32, newEnd time.Time, addedCost int32) error
	UpdateAdminNotes(ctx context.Context, id int32, notes string) error
	ListByUser(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error)
	ListByProduct(ctx context.Context, productID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error)
	// ListEndingOn returns blocking reservations whose end date equals the
	// given date, for return reminders.
	ListEndingOn(ctx context.Context, date time.Time) ([]domain.Reservation, error)
}

type MovementRepository interface {
	// Create writes the movement and its photo rows.
	Create(ctx context.Context, m *domain.ProductMovement) error
	GetByID(ctx context.Context, id int32) (*domain.ProductMovement, error)
	ListByReservation(ctx context.Context, reservationID int32) ([]domain.ProductMovement, error)
	ListByProduct(ctx context.Context, productID int32, page, pageSize int32) ([]domain.ProductMovement, int32, error)
	CountByReservationAndType(ctx context.Context, reservationID int32, movementType domain.MovementType) (int32, error)
}

type LedgerRepository interface {
	// GetBalanceForUpdate reads the user's balance under a row lock,
	// serializing concurrent balance mutations per user. Must be called
	// inside ExecTx.
	GetBalanceForUpdate(ctx context.Context, userID int32) (int32, error)
	GetBalance(ctx context.Context, userID int32) (int32, error)
	UpdateBalance(ctx context.Context, userID int32, balance int32) error
	CreateTransaction(ctx context.Context, tx *domain.CreditTransaction) error
	ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.CreditTransaction, int32, error)
	GetSummary(ctx context.Context, userID int32) (*domain.LedgerSummary, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListByTarget(ctx context.Context, targetType string, targetID int32, page, pageSize int32) ([]domain.AuditEntry, int32, error)
}
