package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault-api/internal/api"
	"github.com/taskvault/taskvault-api/internal/api/middleware"
	"github.com/taskvault/taskvault-api/internal/api/shared"
	"github.com/taskvault/taskvault-api/internal/mocks"
	"github.com/taskvault/taskvault-api/internal/service/auth"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

// testEnv wires the handlers behind a router the way cmd/server does, with
// in-memory stores standing in for postgres.
type testEnv struct {
	router    *chi.Mux
	userStore *mocks.UserStore
	taskStore *mocks.TaskStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userStore := mocks.NewUserStore()
	taskStore := mocks.NewTaskStore()
	tokenService := auth.NewTestTokenService(testSecret, userStore, nil)

	authHandler := api.NewAuthHandler(userStore, tokenService, auth.NewBcryptVerifier(), nil)
	taskHandler := api.NewTaskHandler(taskStore, nil)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	r := chi.NewRouter()
	r.Post("/users", authHandler.Register)
	r.Post("/users/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/users/me", authHandler.Me)
		r.Delete("/users/me/token", authHandler.Logout)
		r.Post("/tasks", taskHandler.Create)
		r.Get("/tasks", taskHandler.List)
		r.Get("/tasks/{id}", taskHandler.Get)
		r.Patch("/tasks/{id}", taskHandler.Update)
		r.Delete("/tasks/{id}", taskHandler.Delete)
	})

	return &testEnv{router: r, userStore: userStore, taskStore: taskStore}
}

// do performs a request against the test router. A non-empty token is sent
// in the session header; a non-nil body is JSON-encoded.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(shared.AuthHeader, token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// register creates an account through the API and returns its session token.
func (e *testEnv) register(t *testing.T, email, password string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/users", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	token := rec.Header().Get(shared.AuthHeader)
	require.NotEmpty(t, token)
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}
