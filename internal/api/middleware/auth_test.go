package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault-api/internal/api/middleware"
	"github.com/taskvault/taskvault-api/internal/api/shared"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/mocks"
	"github.com/taskvault/taskvault-api/internal/service/auth"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func setupAuthTest(t *testing.T) (auth.TokenService, *domain.User) {
	t.Helper()

	userStore := mocks.NewUserStore()
	user, err := domain.NewUser("a@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, userStore.Create(context.Background(), user))

	return auth.NewTestTokenService(testSecret, userStore, nil), user
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	t.Run("valid token reaches handler with user and token in context", func(t *testing.T) {
		t.Parallel()

		tokenService, user := setupAuthTest(t)
		token, err := tokenService.Issue(context.Background(), user.ID)
		require.NoError(t, err)

		var gotUser *domain.User
		var gotToken string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser, _ = middleware.GetUser(r)
			gotToken, _ = middleware.GetToken(r)
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set(shared.AuthHeader, token)
		rec := httptest.NewRecorder()

		middleware.NewAuthMiddleware(tokenService).Authenticate(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotUser)
		assert.Equal(t, user.ID, gotUser.ID)
		assert.Equal(t, token, gotToken)
	})

	tests := []struct {
		name  string
		token func(t *testing.T, svc auth.TokenService, user *domain.User) string
	}{
		{
			name: "missing header",
			token: func(t *testing.T, svc auth.TokenService, user *domain.User) string {
				return ""
			},
		},
		{
			name: "garbage token",
			token: func(t *testing.T, svc auth.TokenService, user *domain.User) string {
				return "garbage"
			},
		},
		{
			name: "revoked token",
			token: func(t *testing.T, svc auth.TokenService, user *domain.User) string {
				token, err := svc.Issue(context.Background(), user.ID)
				require.NoError(t, err)
				require.NoError(t, svc.Revoke(context.Background(), user.ID, token))
				return token
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name+" answers bare 401", func(t *testing.T) {
			t.Parallel()

			tokenService, user := setupAuthTest(t)

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be reached")
			})

			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if token := tt.token(t, tokenService, user); token != "" {
				req.Header.Set(shared.AuthHeader, token)
			}
			rec := httptest.NewRecorder()

			middleware.NewAuthMiddleware(tokenService).Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, rec.Body.String())
		})
	}
}
