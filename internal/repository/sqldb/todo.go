package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/model"
	"github.com/sakif/todo-service/internal/repository"
)

var _ repository.TodoRepository = (*DB)(nil)

const todoColumns = `id, title, description, completed, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(s rowScanner) (*model.Todo, error) {
	var (
		todo        model.Todo
		description sql.NullString
	)
	if err := s.Scan(
		&todo.ID,
		&todo.Title,
		&description,
		&todo.Completed,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if description.Valid {
		todo.Description = &description.String
	}
	return &todo, nil
}

// nullable converts an optional string into something the driver stores as
// NULL when absent.
func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// withTx runs fn inside a transaction. The transaction is committed only if
// fn returns nil; on any error it is rolled back so the store is left
// unchanged.
//
// Rollback after a successful Commit is a no-op (it returns sql.ErrTxDone),
// so the deferred call is always safe.
func (db *DB) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Persistence("Database error", fmt.Errorf("sqldb: %s: begin: %w", op, err))
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperror.Persistence("Database error", fmt.Errorf("sqldb: %s: %w", op, err))
	}

	if err := tx.Commit(); err != nil {
		return apperror.Persistence("Database error", fmt.Errorf("sqldb: %s: commit: %w", op, err))
	}
	return nil
}

// List returns every todo in primary-key order so repeated calls with no
// intervening writes return identical results.
func (db *DB) List(ctx context.Context) ([]model.Todo, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos ORDER BY id ASC`,
	)
	if err != nil {
		return nil, apperror.Persistence("Database error", fmt.Errorf("sqldb: listing todos: %w", err))
	}
	defer rows.Close()

	// Non-nil so an empty table encodes as [] rather than null.
	todos := make([]model.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, apperror.Persistence("Database error", fmt.Errorf("sqldb: scanning todo row: %w", err))
		}
		todos = append(todos, *todo)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Persistence("Database error", fmt.Errorf("sqldb: iterating todos: %w", err))
	}

	return todos, nil
}

// GetByID returns the todo with the given id, or an ErrNotFound AppError.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.Todo, error) {
	todo, err := getByID(ctx, db.conn, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Todo")
		}
		return nil, apperror.Persistence("Database error", fmt.Errorf("sqldb: getting todo %d: %w", id, err))
	}
	return todo, nil
}

// querier is the subset shared by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getByID(ctx context.Context, q querier, id int64) (*model.Todo, error) {
	return scanTodo(q.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = ?`,
		id,
	))
}

// errBlankTitle keeps a row without a title out of the table even when a
// caller skips the service layer.
func errBlankTitle() error {
	return apperror.ValidationFailed("title", "Title is required")
}

// Create inserts a new todo and fills in the caller's ID and timestamps.
func (db *DB) Create(ctx context.Context, todo *model.Todo) error {
	if strings.TrimSpace(todo.Title) == "" {
		return errBlankTitle()
	}

	now := time.Now().UTC()

	var id int64
	err := db.withTx(ctx, "creating todo", func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO todos (title, description, completed, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)`,
			todo.Title,
			nullable(todo.Description),
			todo.Completed,
			now,
			now,
		)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return err
	}

	todo.ID = id
	todo.CreatedAt = now
	todo.UpdatedAt = now
	return nil
}

// Update applies patch to the todo with the given id and returns the
// result. The read and the write share one transaction; fields the patch
// leaves nil keep the value read from the row.
func (db *DB) Update(ctx context.Context, id int64, patch model.TodoPatch) (*model.Todo, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, errBlankTitle()
	}

	var updated *model.Todo
	err := db.withTx(ctx, fmt.Sprintf("updating todo %d", id), func(tx *sql.Tx) error {
		todo, err := getByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.NotFound("Todo")
			}
			return err
		}

		// Nothing to write; updated_at stays as it was.
		if patch.Empty() {
			updated = todo
			return nil
		}

		patch.Apply(todo)
		todo.UpdatedAt = time.Now().UTC()

		result, err := tx.ExecContext(ctx,
			`UPDATE todos
			 SET title = ?, description = ?, completed = ?, updated_at = ?
			 WHERE id = ?`,
			todo.Title,
			nullable(todo.Description),
			todo.Completed,
			todo.UpdatedAt,
			id,
		)
		if err != nil {
			return err
		}
		// A concurrent delete between the read and the write loses the race.
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return apperror.NotFound("Todo")
		}

		updated = todo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the todo permanently. Deleting a missing id is an
// ErrNotFound AppError and changes nothing.
func (db *DB) Delete(ctx context.Context, id int64) error {
	return db.withTx(ctx, fmt.Sprintf("deleting todo %d", id), func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return apperror.NotFound("Todo")
		}
		return nil
	})
}

// Ping runs a no-op query. Unlike sql.DB.Ping it exercises a real round
// trip through the driver.
func (db *DB) Ping(ctx context.Context) error {
	var one int
	if err := db.conn.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return apperror.Connectivity(err)
	}
	return nil
}
