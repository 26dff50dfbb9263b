package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"gearbook-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can run
// against the shared pool or inside an open transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB // nil for a transaction-scoped store
	q  DBTX

	users         repository.UserRepository
	sections      repository.SectionRepository
	products      repository.ProductRepository
	reservations  repository.ReservationRepository
	movements     repository.MovementRepository
	ledger        repository.LedgerRepository
	notifications repository.NotificationRepository
	audit         repository.AuditRepository
}

func NewStore(db *sql.DB) *Store {
	return newStore(db, db)
}

func newStore(db *sql.DB, q DBTX) *Store {
	return &Store{
		db:            db,
		q:             q,
		users:         NewUserRepository(q),
		sections:      NewSectionRepository(q),
		products:      NewProductRepository(q),
		reservations:  NewReservationRepository(q),
		movements:     NewMovementRepository(q),
		ledger:        NewLedgerRepository(q),
		notifications: NewNotificationRepository(q),
		audit:         NewAuditRepository(q),
	}
}

func (s *Store) Users() repository.UserRepository                 { return s.users }
func (s *Store) Sections() repository.SectionRepository           { return s.sections }
func (s *Store) Products() repository.ProductRepository           { return s.products }
func (s *Store) Reservations() repository.ReservationRepository   { return s.reservations }
func (s *Store) Movements() repository.MovementRepository         { return s.movements }
func (s *Store) Ledger() repository.LedgerRepository              { return s.ledger }
func (s *Store) Notifications() repository.NotificationRepository { return s.notifications }
func (s *Store) Audit() repository.AuditRepository                { return s.audit }

// ExecTx runs fn against a transaction-scoped Store. A nested call reuses
// the already-open transaction instead of starting a second one.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newStore(nil, tx)); err != nil {
		return err
	}
	return tx.Commit()
}
