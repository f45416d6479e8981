package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskOwnerIDEmpty is returned when a task's owner ID is empty or nil.
	ErrTaskOwnerIDEmpty = errors.New("task owner ID cannot be empty")

	// ErrTaskTextEmpty is returned when a task's text is empty after trimming.
	ErrTaskTextEmpty = errors.New("task text cannot be empty")
)

// Task represents a single to-do record owned by exactly one user.
// CompletedAt holds a Unix-epoch-milliseconds timestamp and is non-nil
// if and only if Completed is true.
type Task struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	CompletedAt *int64    `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskPatch carries the fields a caller may change on an existing task.
// Only Text and Completed are patchable; anything else in a request body
// is dropped before it reaches this struct.
type TaskPatch struct {
	Text      *string
	Completed *bool
}

// NewTask creates a new Task owned by the given user with the given text.
// The text is trimmed, a new UUID is generated for the task ID, and the
// task starts uncompleted. Returns an error if validation fails.
func NewTask(ownerID uuid.UUID, text string) (*Task, error) {
	task := &Task{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Text:      strings.TrimSpace(text),
		Completed: false,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.OwnerID == uuid.Nil {
		return ErrTaskOwnerIDEmpty
	}

	if t.Text == "" {
		return ErrTaskTextEmpty
	}

	return nil
}

// ApplyPatch applies the patch to the task in place.
//
// The completion state is recomputed on every call rather than merged:
// a patch with Completed pointing at true stamps CompletedAt with the
// current time in epoch milliseconds, while a patch with Completed absent
// or false forces Completed to false and clears CompletedAt. This keeps
// the CompletedAt-iff-Completed invariant without relying on storage
// constraints, at the cost of a text-only patch also clearing completion.
func (t *Task) ApplyPatch(patch TaskPatch, now time.Time) {
	if patch.Text != nil {
		t.Text = strings.TrimSpace(*patch.Text)
	}

	if patch.Completed != nil && *patch.Completed {
		t.Completed = true
		millis := now.UnixMilli()
		t.CompletedAt = &millis
	} else {
		t.Completed = false
		t.CompletedAt = nil
	}

	t.UpdatedAt = now.UTC()
}
