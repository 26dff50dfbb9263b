package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gearbook-backend/internal/domain"
)

func TestTokenManager(t *testing.T) {
	manager := NewTokenManager("a-test-secret-that-is-long-enough", 60)

	t.Run("Round trip", func(t *testing.T) {
		token, err := manager.GenerateAccessToken(7, domain.UserRoleManager)
		assert.NoError(t, err)

		claims, err := manager.ValidateToken(token)
		assert.NoError(t, err)
		assert.Equal(t, int32(7), claims.UserID)
		assert.Equal(t, domain.UserRoleManager, claims.Role)
	})

	t.Run("Wrong secret rejected", func(t *testing.T) {
		other := NewTokenManager("a-different-secret-also-long-enough", 60)
		token, err := other.GenerateAccessToken(7, domain.UserRoleMember)
		assert.NoError(t, err)

		_, err = manager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage token rejected", func(t *testing.T) {
		_, err := manager.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
