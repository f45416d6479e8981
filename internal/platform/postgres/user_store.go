// Package postgres contains the PostgreSQL implementations of the store
// interfaces.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
//
// The session list lives in a JSONB column on the users row, so every
// session append or removal is a single atomic row write.
type PostgresUserStore struct {
	db         store.DBTX
	bcryptCost int
	logger     *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection that should be
// initialized and managed by the caller, and the bcrypt work factor used
// when hashing passwords. If logger is nil, the default logger is used.
func NewPostgresUserStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:         db,
		bcryptCost: bcryptCost,
		logger:     logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.UserStore.Create.
// It validates the user, hashes the plaintext password with bcrypt, and
// inserts the row. The plaintext password is cleared before returning.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err, "user_id", user.ID)
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = string(hashed)
	user.Password = ""

	sessions, err := marshalSessions(user.Sessions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (id, email, hashed_password, sessions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.HashedPassword,
		sessions,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		s.logger.Error("failed to insert user", "error", err, "user_id", user.ID)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, hashed_password, sessions, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, hashed_password, sessions, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// AppendSession implements store.UserStore.AppendSession.
// The JSONB concatenation makes the append a single atomic statement, so
// two concurrent logins cannot clobber each other's session entries.
func (s *PostgresUserStore) AppendSession(
	ctx context.Context,
	userID uuid.UUID,
	session domain.Session,
) error {
	entry, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session entry: %w", err)
	}

	query := `
		UPDATE users
		SET sessions = sessions || $2::jsonb, updated_at = now()
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, userID, entry)
	if err != nil {
		s.logger.Error("failed to append session", "error", err, "user_id", userID)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "user"); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUserNotFound, err)
	}

	return nil
}

// RemoveSession implements store.UserStore.RemoveSession.
// Filtering the JSONB array in a single UPDATE keeps the removal atomic;
// a token that is not present simply leaves the array unchanged.
func (s *PostgresUserStore) RemoveSession(
	ctx context.Context,
	userID uuid.UUID,
	token string,
) error {
	query := `
		UPDATE users
		SET sessions = (
			SELECT COALESCE(jsonb_agg(entry), '[]'::jsonb)
			FROM jsonb_array_elements(sessions) AS entry
			WHERE entry->>'token' <> $2
		), updated_at = now()
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, userID, token)
	if err != nil {
		s.logger.Error("failed to remove session", "error", err, "user_id", userID)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "user"); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUserNotFound, err)
	}

	return nil
}

// rowScanner abstracts *sql.Row for scanUser.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresUserStore) scanUser(row rowScanner) (*domain.User, error) {
	var (
		user     domain.User
		sessions []byte
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&sessions,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if mapped := MapError(err); errors.Is(mapped, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", store.ErrUserNotFound, err)
		}
		return nil, MapError(err)
	}

	if err := json.Unmarshal(sessions, &user.Sessions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sessions for user %s: %w", user.ID, err)
	}

	return &user, nil
}

// marshalSessions serializes a session list for the JSONB column,
// normalizing nil to an empty array so the column never holds SQL NULL.
func marshalSessions(sessions []domain.Session) ([]byte, error) {
	if sessions == nil {
		sessions = []domain.Session{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sessions: %w", err)
	}
	return data, nil
}
