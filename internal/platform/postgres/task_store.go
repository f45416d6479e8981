package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
//
// Every query carries the owner ID in its WHERE clause; there is no code
// path that reads or writes a task row without it.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection that should be
// initialized and managed by the caller. If logger is nil, the default
// logger is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (id, owner_id, text, completed, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.OwnerID,
		task.Text,
		task.Completed,
		completedAtArg(task.CompletedAt),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		s.logger.Error("failed to insert task",
			"error", err,
			"task_id", task.ID,
			"owner_id", task.OwnerID)
		return MapError(err)
	}

	return nil
}

// ListByOwner implements store.TaskStore.ListByOwner
func (s *PostgresTaskStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.Task, error) {
	query := `
		SELECT id, owner_id, text, completed, completed_at, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err, "owner_id", ownerID)
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", "error", err)
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// GetByIDForOwner implements store.TaskStore.GetByIDForOwner
func (s *PostgresTaskStore) GetByIDForOwner(
	ctx context.Context,
	ownerID, id uuid.UUID,
) (*domain.Task, error) {
	query := `
		SELECT id, owner_id, text, completed, completed_at, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", store.ErrTaskNotFound, err)
		}
		return nil, err
	}

	return task, nil
}

// UpdateForOwner implements store.TaskStore.UpdateForOwner
func (s *PostgresTaskStore) UpdateForOwner(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET text = $3, completed = $4, completed_at = $5, updated_at = $6
		WHERE id = $1 AND owner_id = $2
	`

	result, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.OwnerID,
		task.Text,
		task.Completed,
		completedAtArg(task.CompletedAt),
		task.UpdatedAt,
	)
	if err != nil {
		s.logger.Error("failed to update task",
			"error", err,
			"task_id", task.ID,
			"owner_id", task.OwnerID)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return fmt.Errorf("%w: %v", store.ErrTaskNotFound, err)
	}

	return nil
}

// DeleteForOwner implements store.TaskStore.DeleteForOwner
func (s *PostgresTaskStore) DeleteForOwner(
	ctx context.Context,
	ownerID, id uuid.UUID,
) (*domain.Task, error) {
	query := `
		DELETE FROM tasks
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, text, completed, completed_at, created_at, updated_at
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", store.ErrTaskNotFound, err)
		}
		s.logger.Error("failed to delete task",
			"error", err,
			"task_id", id,
			"owner_id", ownerID)
		return nil, err
	}

	return task, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		completedAt sql.NullInt64
	)

	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Text,
		&task.Completed,
		&completedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, MapError(err)
	}

	if completedAt.Valid {
		task.CompletedAt = &completedAt.Int64
	}

	return &task, nil
}

// completedAtArg converts the nullable completion timestamp into a
// database/sql argument.
func completedAtArg(completedAt *int64) sql.NullInt64 {
	if completedAt == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *completedAt, Valid: true}
}
