package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/security"
)

type staticPerms struct {
	granted map[string]bool
}

func (p staticPerms) HasPermission(ctx context.Context, userID int32, permission string, sectionID *int32) (bool, error) {
	return p.granted[permission], nil
}

func TestAuthMiddleware(t *testing.T) {
	tokens := security.NewTokenManager("a-test-secret-that-is-long-enough", 60)
	srv := &Server{tokens: tokens}

	var seen *security.UserClaims
	handler := srv.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = claimsFrom(r)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("Valid token passes claims through", func(t *testing.T) {
		token, err := tokens.GenerateAccessToken(7, domain.UserRoleMember)
		assert.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/v1/reservations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int32(7), seen.UserID)
	})

	t.Run("Missing header rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/reservations", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "UNAUTHENTICATED")
	})

	t.Run("Forged token rejected", func(t *testing.T) {
		other := security.NewTokenManager("a-different-secret-also-long-enough", 60)
		token, err := other.GenerateAccessToken(7, domain.UserRoleAdmin)
		assert.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/v1/reservations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequirePermission(t *testing.T) {
	tokens := security.NewTokenManager("a-test-secret-that-is-long-enough", 60)

	protect := func(srv *Server) http.Handler {
		inner := srv.requirePermission(security.PermReservationManage,
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
		return srv.authMiddleware(inner)
	}

	request := func(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
		token, err := tokens.GenerateAccessToken(7, domain.UserRoleManager)
		assert.NoError(t, err)
		req := httptest.NewRequest("POST", "/api/v1/reservations/42/checkout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("Granted permission reaches the handler", func(t *testing.T) {
		srv := &Server{tokens: tokens,
			perms: staticPerms{granted: map[string]bool{security.PermReservationManage: true}}}
		rec := request(t, protect(srv))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Missing permission is forbidden", func(t *testing.T) {
		srv := &Server{tokens: tokens, perms: staticPerms{}}
		rec := request(t, protect(srv))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "FORBIDDEN")
	})
}
