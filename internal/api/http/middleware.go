package http

import (
	"context"
	"net/http"
	"strings"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/security"
)

type contextKey string

const claimsKey contextKey = "claims"

func claimsFrom(r *http.Request) *security.UserClaims {
	claims, _ := r.Context().Value(claimsKey).(*security.UserClaims)
	return claims
}

// authMiddleware validates the bearer token and stashes the claims in the
// request context. Token issuance lives in the separate auth backend.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respond(w, http.StatusUnauthorized, errorEnvelope{Error: errorBody{
				Kind: "UNAUTHENTICATED", Message: "missing bearer token"}})
			return
		}
		claims, err := s.tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respond(w, http.StatusUnauthorized, errorEnvelope{Error: errorBody{
				Kind: "UNAUTHENTICATED", Message: err.Error()}})
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requirePermission gates a handler behind the role permission table.
func (s *Server) requirePermission(permission string, handler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)
		if claims == nil {
			respond(w, http.StatusUnauthorized, errorEnvelope{Error: errorBody{
				Kind: "UNAUTHENTICATED", Message: "missing bearer token"}})
			return
		}
		ok, err := s.perms.HasPermission(r.Context(), claims.UserID, permission, nil)
		if err != nil {
			respondError(w, err)
			return
		}
		if !ok {
			respondError(w, domain.ForbiddenError("missing permission %s", permission))
			return
		}
		handler(w, r)
	})
}
