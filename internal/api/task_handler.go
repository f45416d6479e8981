package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskvault/taskvault-api/internal/api/middleware"
	"github.com/taskvault/taskvault-api/internal/api/shared"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/platform/logger"
	"github.com/taskvault/taskvault-api/internal/store"
)

// TaskHandler handles task-related HTTP requests. Every operation acts on
// behalf of the authenticated user resolved by the auth middleware, so
// tasks owned by other users are indistinguishable from tasks that do not
// exist.
type TaskHandler struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskStore store.TaskStore, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskHandler{
		taskStore: taskStore,
		logger:    logger.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondEmpty(w, http.StatusUnauthorized)
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task text cannot be empty")
		return
	}

	task, err := domain.NewTask(user.ID, req.Text)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		log.Error("failed to create task", "error", err, "owner_id", user.ID)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	log.Debug("task created", "task_id", task.ID, "owner_id", user.ID)
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// List handles GET /tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondEmpty(w, http.StatusUnauthorized)
		return
	}

	tasks, err := h.taskStore.ListByOwner(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to list tasks", "error", err, "owner_id", user.ID)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	resp := TaskListResponse{Tasks: make([]TaskResponse, 0, len(tasks))}
	for _, task := range tasks {
		resp.Tasks = append(resp.Tasks, taskToResponse(task))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondEmpty(w, http.StatusUnauthorized)
		return
	}

	id, ok := parseTaskID(r)
	if !ok {
		shared.RespondEmpty(w, http.StatusNotFound)
		return
	}

	task, err := h.taskStore.GetByIDForOwner(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondEmpty(w, http.StatusNotFound)
			return
		}
		log.Error("failed to get task", "error", err, "task_id", id, "owner_id", user.ID)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{Task: taskToResponse(task)})
}

// Update handles PATCH /tasks/{id}.
// The completion state is recomputed from the patch on every call: only a
// patch carrying completed=true yields a completed task, and it gets a
// fresh CompletedAt stamp each time.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondEmpty(w, http.StatusUnauthorized)
		return
	}

	id, ok := parseTaskID(r)
	if !ok {
		shared.RespondEmpty(w, http.StatusNotFound)
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	task, err := h.taskStore.GetByIDForOwner(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondEmpty(w, http.StatusNotFound)
			return
		}
		log.Error("failed to get task for update", "error", err, "task_id", id, "owner_id", user.ID)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	task.ApplyPatch(domain.TaskPatch{Text: req.Text, Completed: req.Completed}, time.Now())

	if err := h.taskStore.UpdateForOwner(r.Context(), task); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondEmpty(w, http.StatusNotFound)
			return
		}
		log.Error("failed to update task", "error", err, "task_id", id, "owner_id", user.ID)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	log.Debug("task updated", "task_id", task.ID, "owner_id", user.ID)
	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{Task: taskToResponse(task)})
}

// Delete handles DELETE /tasks/{id}, returning the deleted task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondEmpty(w, http.StatusUnauthorized)
		return
	}

	id, ok := parseTaskID(r)
	if !ok {
		shared.RespondEmpty(w, http.StatusNotFound)
		return
	}

	task, err := h.taskStore.DeleteForOwner(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondEmpty(w, http.StatusNotFound)
			return
		}
		log.Error("failed to delete task", "error", err, "task_id", id, "owner_id", user.ID)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	log.Debug("task deleted", "task_id", task.ID, "owner_id", user.ID)
	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{Task: taskToResponse(task)})
}

// parseTaskID extracts and parses the {id} route parameter. A malformed ID
// reports !ok so the caller can answer 404, indistinguishable from a task
// that does not exist.
func parseTaskID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
