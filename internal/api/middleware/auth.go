// Package middleware provides request-processing middleware for the API.
package middleware

import (
	"context"
	"net/http"

	"github.com/taskvault/taskvault-api/internal/api/shared"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/platform/logger"
	"github.com/taskvault/taskvault-api/internal/service/auth"
)

// AuthMiddleware authenticates requests by resolving the session token in
// the X-Auth header through the token service.
type AuthMiddleware struct {
	tokenService auth.TokenService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(tokenService auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate validates the session token from the X-Auth header and adds
// the resolved user plus the raw token string to the request context.
//
// Any failure short-circuits with a bare 401 and an empty body: a missing
// header is treated the same as an invalid token, and the internal reason
// for rejection is logged but never sent to the client.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(shared.AuthHeader)

		user, err := m.tokenService.Verify(r.Context(), token)
		if err != nil {
			logger.FromContext(r.Context()).Debug("request authentication failed",
				"error", err,
				"path", r.URL.Path)
			shared.RespondEmpty(w, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserContextKey, user)
		ctx = context.WithValue(ctx, shared.TokenContextKey, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUser extracts the authenticated user from the request context.
// Returns the user and a boolean indicating if it was found.
func GetUser(r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(shared.UserContextKey).(*domain.User)
	return user, ok && user != nil
}

// GetToken extracts the raw session token from the request context.
// Returns the token and a boolean indicating if it was found.
func GetToken(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(shared.TokenContextKey).(string)
	return token, ok && token != ""
}
