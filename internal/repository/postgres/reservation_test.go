package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"gearbook-backend/internal/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func reservationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "product_id", "start_date", "end_date", "status",
		"credits_charged", "extension_count", "total_extension_cost", "refunded", "refunded_amount",
		"notes", "admin_notes", "created_on", "updated_on"})
}

func TestReservationRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		res := &domain.Reservation{
			UserID:         7,
			ProductID:      1,
			StartDate:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			EndDate:        time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
			Status:         domain.ReservationStatusConfirmed,
			CreditsCharged: 30,
		}

		mock.ExpectQuery("INSERT INTO reservations").
			WithArgs(res.UserID, res.ProductID, res.StartDate, res.EndDate, res.Status, res.CreditsCharged, res.Notes).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_on", "updated_on"}).
				AddRow(42, time.Now(), time.Now()))

		err := repo.Create(ctx, res)
		assert.NoError(t, err)
		assert.Equal(t, int32(42), res.ID)
	})

	t.Run("Exclusion constraint maps to conflict", func(t *testing.T) {
		res := &domain.Reservation{
			UserID:    7,
			ProductID: 1,
			StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
			Status:    domain.ReservationStatusConfirmed,
		}

		mock.ExpectQuery("INSERT INTO reservations").
			WillReturnError(&pq.Error{Code: "23P01", Constraint: "reservations_no_overlap"})

		err := repo.Create(ctx, res)
		assert.True(t, domain.IsKind(err, domain.KindConflict))
	})
}

func TestReservationRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := reservationRows().
			AddRow(42, 7, 1, time.Now(), time.Now(), "CONFIRMED", 30, 0, 0, false, 0, "", "", time.Now(), time.Now())

		mock.ExpectQuery("FROM reservations WHERE id = \\$1").
			WithArgs(int32(42)).
			WillReturnRows(rows)

		res, err := repo.GetByID(ctx, 42)
		assert.NoError(t, err)
		assert.Equal(t, int32(42), res.ID)
		assert.Equal(t, domain.ReservationStatusConfirmed, res.Status)
	})

	t.Run("Missing row maps to not found", func(t *testing.T) {
		mock.ExpectQuery("FROM reservations WHERE id = \\$1").
			WithArgs(int32(404)).
			WillReturnRows(reservationRows())

		_, err := repo.GetByID(ctx, 404)
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})
}

func TestReservationRepository_FindOverlapping(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	t.Run("Without exclusion", func(t *testing.T) {
		rows := reservationRows().
			AddRow(9, 8, 1, start, end, "CONFIRMED", 30, 0, 0, false, 0, "", "", time.Now(), time.Now())

		mock.ExpectQuery("WHERE product_id = \\$1 AND status IN").
			WithArgs(int32(1), start, end).
			WillReturnRows(rows)

		out, err := repo.FindOverlapping(ctx, 1, start, end, nil)
		assert.NoError(t, err)
		assert.Len(t, out, 1)
		assert.Equal(t, int32(9), out[0].ID)
	})

	t.Run("Excludes the reservation being extended", func(t *testing.T) {
		excludeID := int32(42)
		mock.ExpectQuery("AND id <> \\$4").
			WithArgs(int32(1), start, end, excludeID).
			WillReturnRows(reservationRows())

		out, err := repo.FindOverlapping(ctx, 1, start, end, &excludeID)
		assert.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestReservationRepository_UpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	t.Run("Row matched", func(t *testing.T) {
		mock.ExpectExec("UPDATE reservations SET status").
			WithArgs(domain.ReservationStatusCheckedOut, int32(42), domain.ReservationStatusConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.UpdateStatus(ctx, 42, domain.ReservationStatusConfirmed, domain.ReservationStatusCheckedOut)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Status already changed", func(t *testing.T) {
		mock.ExpectExec("UPDATE reservations SET status").
			WithArgs(domain.ReservationStatusCheckedOut, int32(42), domain.ReservationStatusConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.UpdateStatus(ctx, 42, domain.ReservationStatusConfirmed, domain.ReservationStatusCheckedOut)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestReservationRepository_ApplyExtension(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()
	newEnd := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE reservations").
			WithArgs(newEnd, int32(20), int32(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ApplyExtension(ctx, 42, newEnd, 20)
		assert.NoError(t, err)
	})

	t.Run("Exclusion constraint maps to conflict", func(t *testing.T) {
		mock.ExpectExec("UPDATE reservations").
			WillReturnError(&pq.Error{Code: "23P01"})

		err := repo.ApplyExtension(ctx, 42, newEnd, 20)
		assert.True(t, domain.IsKind(err, domain.KindConflict))
	})
}
