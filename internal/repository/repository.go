// Package repository declares the storage contracts the service layer
// depends on. Implementations live in sub-packages (see repository/sqldb).
package repository

import (
	"context"

	"github.com/sakif/todo-service/internal/model"
)

// TodoRepository is the Todo Store: the only component that touches the
// database. Every method is a single round trip; write methods run inside
// their own transaction and roll it back on failure.
//
// Errors are always *apperror.AppError values:
//   - ErrNotFound when the id does not exist
//   - ErrPersistence when the driver fails
//   - ErrConnectivity from Ping
type TodoRepository interface {
	List(ctx context.Context) ([]model.Todo, error)
	GetByID(ctx context.Context, id int64) (*model.Todo, error)
	Create(ctx context.Context, todo *model.Todo) error
	Update(ctx context.Context, id int64, patch model.TodoPatch) (*model.Todo, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}
