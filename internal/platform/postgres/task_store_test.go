package postgres_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/platform/postgres"
	"github.com/taskvault/taskvault-api/internal/store"
)

func newTaskStoreMock(t *testing.T) (*postgres.PostgresTaskStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return postgres.NewPostgresTaskStore(db, nil), mock
}

func taskColumns() []string {
	return []string{"id", "owner_id", "text", "completed", "completed_at", "created_at", "updated_at"}
}

func TestTaskStoreCreate(t *testing.T) {
	t.Parallel()

	t.Run("inserts the row with a null completion time", func(t *testing.T) {
		t.Parallel()
		s, mock := newTaskStoreMock(t)

		task, err := domain.NewTask(uuid.New(), "buy milk")
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
			WithArgs(task.ID, task.OwnerID, task.Text, false, sql.NullInt64{}, task.CreatedAt, task.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), task))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid task never reaches the database", func(t *testing.T) {
		t.Parallel()
		s, mock := newTaskStoreMock(t)

		err := s.Create(context.Background(), &domain.Task{ID: uuid.New(), OwnerID: uuid.New()})

		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTaskStoreListByOwner(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("scans every row, completed and not", func(t *testing.T) {
		t.Parallel()
		s, mock := newTaskStoreMock(t)

		completedAt := now.UnixMilli()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE owner_id = $1")).
			WithArgs(ownerID).
			WillReturnRows(sqlmock.NewRows(taskColumns()).
				AddRow(uuid.New(), ownerID, "first", false, nil, now, now).
				AddRow(uuid.New(), ownerID, "second", true, completedAt, now, now))

		tasks, err := s.ListByOwner(context.Background(), ownerID)

		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Nil(t, tasks[0].CompletedAt)
		require.NotNil(t, tasks[1].CompletedAt)
		assert.Equal(t, completedAt, *tasks[1].CompletedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows yields an empty slice", func(t *testing.T) {
		t.Parallel()
		s, mock := newTaskStoreMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE owner_id = $1")).
			WithArgs(ownerID).
			WillReturnRows(sqlmock.NewRows(taskColumns()))

		tasks, err := s.ListByOwner(context.Background(), ownerID)

		require.NoError(t, err)
		assert.Empty(t, tasks)
		assert.NotNil(t, tasks)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTaskStoreGetByIDForOwner(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("fetches the row scoped to the owner", func(t *testing.T) {
		t.Parallel()
		s, mock := newTaskStoreMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND owner_id = $2")).
			WithArgs(id, ownerID).
			WillReturnRows(sqlmock.NewRows(taskColumns()).
				AddRow(id, ownerID, "buy milk", false, nil, now, now))

		task, err := s.GetByIDForOwner(context.Background(), ownerID, id)

		require.NoError(t, err)
		assert.Equal(t, id, task.ID)
		assert.Equal(t, ownerID, task.OwnerID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row maps to ErrTaskNotFound", func(t *testing.T) {
		t.Parallel()
		s, mock := newTaskStoreMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND owner_id = $2")).
			WithArgs(id, ownerID).
			WillReturnError(sql.ErrNoRows)

		_, err := s.GetByIDForOwner(context.Background(), ownerID, id)

		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTaskStoreUpdateForOwner(t *testing.T) {
	t.Parallel()

	t.Run("writes the mutable columns", func(t *testing.T) {
		t.Parallel()
		s, mock := newTaskStoreMock(t)

		task, err := domain.NewTask(uuid.New(), "buy milk")
		require.NoError(t, err)
		completedAt := time.Now().UnixMilli()
		task.Completed = true
		task.CompletedAt = &completedAt

		mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks")).
			WithArgs(task.ID, task.OwnerID, task.Text, true,
				sql.NullInt64{Int64: completedAt, Valid: true}, task.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.UpdateForOwner(context.Background(), task))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows affected maps to ErrTaskNotFound", func(t *testing.T) {
		t.Parallel()
		s, mock := newTaskStoreMock(t)

		task, err := domain.NewTask(uuid.New(), "buy milk")
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = s.UpdateForOwner(context.Background(), task)

		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTaskStoreDeleteForOwner(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("returns the deleted row", func(t *testing.T) {
		t.Parallel()
		s, mock := newTaskStoreMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM tasks")).
			WithArgs(id, ownerID).
			WillReturnRows(sqlmock.NewRows(taskColumns()).
				AddRow(id, ownerID, "buy milk", false, nil, now, now))

		task, err := s.DeleteForOwner(context.Background(), ownerID, id)

		require.NoError(t, err)
		assert.Equal(t, id, task.ID)
		assert.Equal(t, "buy milk", task.Text)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row maps to ErrTaskNotFound", func(t *testing.T) {
		t.Parallel()
		s, mock := newTaskStoreMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM tasks")).
			WithArgs(id, ownerID).
			WillReturnError(sql.ErrNoRows)

		_, err := s.DeleteForOwner(context.Background(), ownerID, id)

		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
