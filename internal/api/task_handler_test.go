package api_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault-api/internal/api"
)

// createTask creates a task through the API and returns its response shape.
func createTask(t *testing.T, env *testEnv, token, text string) api.TaskResponse {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/tasks", token, map[string]string{"text": text})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TaskResponse
	decodeBody(t, rec, &resp)
	return resp
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	t.Run("success returns the bare task, not yet completed", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		token := env.register(t, "a@example.com", "secret1")

		rec := env.do(t, http.MethodPost, "/tasks", token, map[string]string{"text": "  buy milk  "})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp api.TaskResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "buy milk", resp.Text)
		assert.False(t, resp.Completed)
		assert.Nil(t, resp.CompletedAt)
		assert.NotEmpty(t, resp.ID)
	})

	t.Run("blank text answers 400", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		token := env.register(t, "a@example.com", "secret1")

		rec := env.do(t, http.MethodPost, "/tasks", token, map[string]string{"text": "   "})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("without a token answers bare 401", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/tasks", "", map[string]string{"text": "buy milk"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestListTasks(t *testing.T) {
	t.Parallel()

	t.Run("returns only the caller's tasks", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		mine := env.register(t, "mine@example.com", "secret1")
		theirs := env.register(t, "theirs@example.com", "secret1")

		createTask(t, env, mine, "first")
		createTask(t, env, mine, "second")
		createTask(t, env, theirs, "not yours")

		rec := env.do(t, http.MethodGet, "/tasks", mine, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp api.TaskListResponse
		decodeBody(t, rec, &resp)
		require.Len(t, resp.Tasks, 2)
		assert.Equal(t, "first", resp.Tasks[0].Text)
		assert.Equal(t, "second", resp.Tasks[1].Text)
	})

	t.Run("empty collection is an empty array", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		token := env.register(t, "a@example.com", "secret1")

		rec := env.do(t, http.MethodGet, "/tasks", token, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"tasks":[]}`, rec.Body.String())
	})
}

func TestGetTask(t *testing.T) {
	t.Parallel()

	t.Run("returns the task in an envelope", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		token := env.register(t, "a@example.com", "secret1")
		created := createTask(t, env, token, "buy milk")

		rec := env.do(t, http.MethodGet, "/tasks/"+created.ID.String(), token, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp api.TaskEnvelope
		decodeBody(t, rec, &resp)
		assert.Equal(t, created.ID, resp.Task.ID)
		assert.Equal(t, "buy milk", resp.Task.Text)
	})

	notFound := []struct {
		name string
		path func(env *testEnv, t *testing.T, ownToken string) string
	}{
		{
			name: "malformed id",
			path: func(env *testEnv, t *testing.T, ownToken string) string {
				return "/tasks/not-a-uuid"
			},
		},
		{
			name: "unknown id",
			path: func(env *testEnv, t *testing.T, ownToken string) string {
				return "/tasks/" + uuid.New().String()
			},
		},
		{
			name: "another user's task",
			path: func(env *testEnv, t *testing.T, ownToken string) string {
				other := env.register(t, "other@example.com", "secret1")
				theirs := createTask(t, env, other, "not yours")
				return "/tasks/" + theirs.ID.String()
			},
		},
	}

	for _, tt := range notFound {
		tt := tt
		t.Run(tt.name+" answers bare 404", func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)
			token := env.register(t, "a@example.com", "secret1")

			rec := env.do(t, http.MethodGet, tt.path(env, t, token), token, nil)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Empty(t, rec.Body.String())
		})
	}
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	t.Run("completing stamps the completion time", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		token := env.register(t, "a@example.com", "secret1")
		created := createTask(t, env, token, "buy milk")

		rec := env.do(t, http.MethodPatch, "/tasks/"+created.ID.String(), token, map[string]any{
			"completed": true,
		})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp api.TaskEnvelope
		decodeBody(t, rec, &resp)
		assert.True(t, resp.Task.Completed)
		require.NotNil(t, resp.Task.CompletedAt)
		assert.Positive(t, *resp.Task.CompletedAt)
	})

	t.Run("patch without completed clears completion", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		token := env.register(t, "a@example.com", "secret1")
		created := createTask(t, env, token, "buy milk")

		rec := env.do(t, http.MethodPatch, "/tasks/"+created.ID.String(), token, map[string]any{
			"completed": true,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		// A text-only patch recomputes completion from scratch.
		rec = env.do(t, http.MethodPatch, "/tasks/"+created.ID.String(), token, map[string]any{
			"text": "buy oat milk",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp api.TaskEnvelope
		decodeBody(t, rec, &resp)
		assert.Equal(t, "buy oat milk", resp.Task.Text)
		assert.False(t, resp.Task.Completed)
		assert.Nil(t, resp.Task.CompletedAt)
	})

	t.Run("completed false clears completion", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		token := env.register(t, "a@example.com", "secret1")
		created := createTask(t, env, token, "buy milk")

		require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, "/tasks/"+created.ID.String(), token, map[string]any{
			"completed": true,
		}).Code)

		rec := env.do(t, http.MethodPatch, "/tasks/"+created.ID.String(), token, map[string]any{
			"completed": false,
		})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp api.TaskEnvelope
		decodeBody(t, rec, &resp)
		assert.False(t, resp.Task.Completed)
		assert.Nil(t, resp.Task.CompletedAt)
	})

	t.Run("another user's task answers bare 404 and stays untouched", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		owner := env.register(t, "owner@example.com", "secret1")
		intruder := env.register(t, "intruder@example.com", "secret1")
		created := createTask(t, env, owner, "buy milk")

		rec := env.do(t, http.MethodPatch, "/tasks/"+created.ID.String(), intruder, map[string]any{
			"text": "hijacked", "completed": true,
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())

		getRec := env.do(t, http.MethodGet, "/tasks/"+created.ID.String(), owner, nil)
		require.Equal(t, http.StatusOK, getRec.Code)
		var resp api.TaskEnvelope
		decodeBody(t, getRec, &resp)
		assert.Equal(t, "buy milk", resp.Task.Text)
		assert.False(t, resp.Task.Completed)
	})

	t.Run("malformed id answers bare 404", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		token := env.register(t, "a@example.com", "secret1")

		rec := env.do(t, http.MethodPatch, "/tasks/123", token, map[string]any{"completed": true})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	t.Run("returns the deleted task and removes it", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		token := env.register(t, "a@example.com", "secret1")
		created := createTask(t, env, token, "buy milk")

		rec := env.do(t, http.MethodDelete, "/tasks/"+created.ID.String(), token, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp api.TaskEnvelope
		decodeBody(t, rec, &resp)
		assert.Equal(t, created.ID, resp.Task.ID)

		// A second delete finds nothing.
		rec = env.do(t, http.MethodDelete, "/tasks/"+created.ID.String(), token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("another user's task answers bare 404 and survives", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		owner := env.register(t, "owner@example.com", "secret1")
		intruder := env.register(t, "intruder@example.com", "secret1")
		created := createTask(t, env, owner, "buy milk")

		rec := env.do(t, http.MethodDelete, "/tasks/"+created.ID.String(), intruder, nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())

		assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/tasks/"+created.ID.String(), owner, nil).Code)
	})
}
