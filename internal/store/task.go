package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
//
// Every read and write is scoped to an owner ID so that a task is only
// ever visible to, and mutable by, the user who created it. Implementations
// must fold "exists but owned by someone else" into ErrTaskNotFound.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// ListByOwner retrieves all tasks owned by the given user.
	// Returns an empty slice if the user owns no tasks.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)

	// GetByIDForOwner retrieves the task with the given ID if it is owned
	// by the given user. Returns ErrTaskNotFound otherwise.
	GetByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// UpdateForOwner persists the task's current state, provided the stored
	// row is owned by task.OwnerID. Returns ErrTaskNotFound if the task does
	// not exist or is owned by another user.
	UpdateForOwner(ctx context.Context, task *domain.Task) error

	// DeleteForOwner removes the task with the given ID if it is owned by
	// the given user, returning the deleted task.
	// Returns ErrTaskNotFound if the task does not exist or is owned by
	// another user; a repeated delete for the same ID therefore fails.
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
}
