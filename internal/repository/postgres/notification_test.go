package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"gearbook-backend/internal/domain"
)

func TestNotificationRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	createdOn := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM notifications WHERE user_id = \\$1").
		WithArgs(int32(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM notifications WHERE user_id = \\$1 ORDER BY created_on DESC").
		WithArgs(int32(7), int32(20), int32(0)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "type", "title", "message", "is_read", "attributes", "created_on"}).
			AddRow(3, 7, domain.NotificationReservationConfirmed, "Reservation confirmed",
				"Your reservation is confirmed.", false, []byte(`{"reservation_id":"42"}`), createdOn))

	notes, total, err := repo.List(context.Background(), 7, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), total)
	assert.Len(t, notes, 1)
	assert.Equal(t, createdOn, notes[0].CreatedOn)
	assert.Equal(t, "42", notes[0].Attributes["reservation_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
