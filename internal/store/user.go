package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// It handles domain validation and password hashing internally; the
	// plaintext Password field is never persisted.
	// Returns ErrEmailExists if the email is already taken.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID, including the full
	// session list. Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address, including the
	// full session list. Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// AppendSession adds one session entry to the user's session list.
	// The append is a single atomic write against the user's row.
	// Returns ErrUserNotFound if the user does not exist.
	AppendSession(ctx context.Context, userID uuid.UUID, session domain.Session) error

	// RemoveSession removes every session entry whose token matches the
	// given token string, as a single atomic write against the user's row.
	// Removing an absent token is not an error.
	// Returns ErrUserNotFound if the user does not exist.
	RemoveSession(ctx context.Context, userID uuid.UUID, token string) error
}
