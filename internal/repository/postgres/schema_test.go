package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestEnsureSchema(t *testing.T) {
	t.Run("Applies the full DDL in one statement", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS btree_gist").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := EnsureSchema(context.Background(), db)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Seeds the system section exactly once", func(t *testing.T) {
		seed := "INSERT INTO sections (name, description, is_system)\nSELECT 'Unassigned'"
		assert.Contains(t, Schema, seed)
		assert.Contains(t, Schema, "WHERE NOT EXISTS (SELECT 1 FROM sections WHERE is_system)")
	})
}
