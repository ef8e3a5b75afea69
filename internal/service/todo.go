// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, logs business events
//	Repository (Data layer)  → reads/writes to the database
//
// TodoService takes a repository.TodoRepository (interface), not a concrete
// *sqldb.DB, so tests can hand it an in-memory fake and main.go can pick the
// driver without this package noticing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/model"
	"github.com/sakif/todo-service/internal/repository"
)

// MaxTitleLength fits the narrowest title column among the supported
// databases (MySQL VARCHAR(255)) with room to spare.
const MaxTitleLength = 200

// Messages returned to clients. Handlers echo them verbatim.
const (
	MsgTitleRequired = "Title is required"
	MsgTitleTooLong  = "Title must be 200 characters or less"
)

// CreateTodoInput is the typed body of a create request. Title is a pointer
// so "absent" and "present but empty" are both visible; both are rejected.
type CreateTodoInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// TodoService handles business logic for todos.
type TodoService struct {
	repo   repository.TodoRepository
	logger *slog.Logger
}

// NewTodoService creates a new TodoService.
func NewTodoService(repo repository.TodoRepository, logger *slog.Logger) *TodoService {
	return &TodoService{
		repo:   repo,
		logger: logger,
	}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperror.ValidationFailed("title", MsgTitleRequired)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", apperror.ValidationFailed("title", MsgTitleTooLong)
	}
	return title, nil
}

// Create validates the input and stores a new todo. Completed defaults to
// false and Description stays null when not supplied.
func (s *TodoService) Create(ctx context.Context, in CreateTodoInput) (*model.Todo, error) {
	if in.Title == nil {
		return nil, apperror.ValidationFailed("title", MsgTitleRequired)
	}
	title, err := validateTitle(*in.Title)
	if err != nil {
		return nil, err
	}

	todo := &model.Todo{
		Title:       title,
		Description: in.Description,
	}
	if in.Completed != nil {
		todo.Completed = *in.Completed
	}

	if err := s.repo.Create(ctx, todo); err != nil {
		s.logger.Error("failed to create todo",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating todo: %w", err)
	}

	s.logger.Info("todo created",
		slog.Int64("id", todo.ID),
		slog.String("title", todo.Title),
	)
	return todo, nil
}

// Get returns a single todo or an ErrNotFound AppError.
func (s *TodoService) Get(ctx context.Context, id int64) (*model.Todo, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every todo, oldest first.
func (s *TodoService) List(ctx context.Context) ([]model.Todo, error) {
	todos, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list todos", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	return todos, nil
}

// Update applies a partial update. Omitted fields keep their stored value;
// a supplied title must still be non-empty.
func (s *TodoService) Update(ctx context.Context, id int64, patch model.TodoPatch) (*model.Todo, error) {
	if patch.Title != nil {
		title, err := validateTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}

	todo, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to update todo",
				slog.Int64("id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil, fmt.Errorf("updating todo: %w", err)
	}

	s.logger.Info("todo updated", slog.Int64("id", todo.ID))
	return todo, nil
}

// Delete removes a todo. Returns an ErrNotFound AppError if it doesn't exist.
func (s *TodoService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to delete todo",
				slog.Int64("id", id),
				slog.String("error", err.Error()),
			)
		}
		return fmt.Errorf("deleting todo: %w", err)
	}

	s.logger.Info("todo deleted", slog.Int64("id", id))
	return nil
}

// Health reports whether the database answers a no-op query.
func (s *TodoService) Health(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}
