// Package mocks provides in-memory test doubles for the store interfaces.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/store"
)

// UserStore is an in-memory implementation of store.UserStore for tests.
// It mirrors the persistence semantics the handlers rely on: unique
// emails, bcrypt-hashed passwords, and atomic session list mutations.
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	// CreateErr, when set, is returned by Create to simulate storage faults.
	CreateErr error
	// GetErr, when set, is returned by GetByID and GetByEmail.
	GetErr error
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[uuid.UUID]*domain.User),
	}
}

// Create implements store.UserStore.Create.
// It hashes with bcrypt.MinCost to keep tests fast.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}

	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	user.HashedPassword = string(hashed)
	user.Password = ""

	s.users[user.ID] = copyUser(user)
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return copyUser(user), nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// AppendSession implements store.UserStore.AppendSession
func (s *UserStore) AppendSession(
	ctx context.Context,
	userID uuid.UUID,
	session domain.Session,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	user.Sessions = append(user.Sessions, session)
	return nil
}

// RemoveSession implements store.UserStore.RemoveSession
func (s *UserStore) RemoveSession(ctx context.Context, userID uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	user.RemoveSession(token)
	return nil
}

// SessionCount reports how many sessions the given user currently has.
// Test helper, not part of store.UserStore.
func (s *UserStore) SessionCount(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return 0
	}
	return len(user.Sessions)
}

func copyUser(user *domain.User) *domain.User {
	clone := *user
	clone.Sessions = append([]domain.Session(nil), user.Sessions...)
	return &clone
}
