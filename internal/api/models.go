package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskvault/taskvault-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateTaskRequest defines the payload for the task creation endpoint.
type CreateTaskRequest struct {
	Text string `json:"text" validate:"required"`
}

// UpdateTaskRequest defines the payload for the task update endpoint.
// Only text and completed are patchable; unknown fields in the body are
// dropped by the decoder.
type UpdateTaskRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// UserResponse is the outward shape of an account: identity and email
// only. Password hashes and session tokens never appear in a body.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// TaskResponse is the outward shape of a task. CompletedAt is epoch
// milliseconds and null unless the task is completed.
type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	CompletedAt *int64    `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskListResponse wraps the task collection returned by the list endpoint.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// TaskEnvelope wraps a single task for the get, update, and delete
// endpoints. Create answers with the bare task instead.
type TaskEnvelope struct {
	Task TaskResponse `json:"task"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Email: user.Email,
	}
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Text:        task.Text,
		Completed:   task.Completed,
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}
