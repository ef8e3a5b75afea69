package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeTodoRepo is an in-memory repository.TodoRepository. Set the *Err
// fields to simulate a failing database.
type fakeTodoRepo struct {
	todos  map[int64]model.Todo
	nextID int64

	createErr error
	listErr   error
	pingErr   error

	createCalls int
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{todos: make(map[int64]model.Todo), nextID: 1}
}

func (f *fakeTodoRepo) List(ctx context.Context) ([]model.Todo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Todo, 0, len(f.todos))
	for id := int64(1); id < f.nextID; id++ {
		if t, ok := f.todos[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTodoRepo) GetByID(ctx context.Context, id int64) (*model.Todo, error) {
	t, ok := f.todos[id]
	if !ok {
		return nil, apperror.NotFound("Todo")
	}
	return &t, nil
}

func (f *fakeTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	todo.ID = f.nextID
	f.nextID++
	f.todos[todo.ID] = *todo
	return nil
}

func (f *fakeTodoRepo) Update(ctx context.Context, id int64, patch model.TodoPatch) (*model.Todo, error) {
	t, ok := f.todos[id]
	if !ok {
		return nil, apperror.NotFound("Todo")
	}
	patch.Apply(&t)
	f.todos[id] = t
	return &t, nil
}

func (f *fakeTodoRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.todos[id]; !ok {
		return apperror.NotFound("Todo")
	}
	delete(f.todos, id)
	return nil
}

func (f *fakeTodoRepo) Ping(ctx context.Context) error {
	return f.pingErr
}

func newTestService(repo *fakeTodoRepo) *TodoService {
	return NewTodoService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// =========================================================================
// CREATE
// =========================================================================

func TestCreate(t *testing.T) {
	repo := newFakeTodoRepo()
	svc := newTestService(repo)

	todo, err := svc.Create(context.Background(), CreateTodoInput{Title: strPtr("  Buy milk  ")})
	require.NoError(t, err)

	assert.Equal(t, int64(1), todo.ID)
	assert.Equal(t, "Buy milk", todo.Title, "title should be trimmed")
	assert.Nil(t, todo.Description)
	assert.False(t, todo.Completed)
}

func TestCreate_WithOptionalFields(t *testing.T) {
	svc := newTestService(newFakeTodoRepo())

	todo, err := svc.Create(context.Background(), CreateTodoInput{
		Title:       strPtr("Write report"),
		Description: strPtr("Q3"),
		Completed:   boolPtr(true),
	})
	require.NoError(t, err)

	require.NotNil(t, todo.Description)
	assert.Equal(t, "Q3", *todo.Description)
	assert.True(t, todo.Completed)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateTodoInput
		wantMsg string
	}{
		{"missing title", CreateTodoInput{}, MsgTitleRequired},
		{"empty title", CreateTodoInput{Title: strPtr("")}, MsgTitleRequired},
		{"whitespace title", CreateTodoInput{Title: strPtr("   ")}, MsgTitleRequired},
		{"too long", CreateTodoInput{Title: strPtr(strings.Repeat("x", MaxTitleLength+1))}, MsgTitleTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeTodoRepo()
			svc := newTestService(repo)

			_, err := svc.Create(context.Background(), tt.input)

			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrValidation))
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Zero(t, repo.createCalls, "invalid input must not reach the store")
		})
	}
}

func TestCreate_RepoError(t *testing.T) {
	repo := newFakeTodoRepo()
	repo.createErr = apperror.Persistence("Database error", errors.New("disk full"))
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateTodoInput{Title: strPtr("x")})

	assert.True(t, errors.Is(err, apperror.ErrPersistence))
}

// =========================================================================
// READ
// =========================================================================

func TestGet_NotFound(t *testing.T) {
	svc := newTestService(newFakeTodoRepo())

	_, err := svc.Get(context.Background(), 7)

	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestList(t *testing.T) {
	svc := newTestService(newFakeTodoRepo())
	ctx := context.Background()

	for _, title := range []string{"a", "b"} {
		_, err := svc.Create(ctx, CreateTodoInput{Title: strPtr(title)})
		require.NoError(t, err)
	}

	todos, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "a", todos[0].Title)
	assert.Equal(t, "b", todos[1].Title)
}

func TestList_RepoError(t *testing.T) {
	repo := newFakeTodoRepo()
	repo.listErr = apperror.Persistence("Database error", errors.New("gone"))
	svc := newTestService(repo)

	_, err := svc.List(context.Background())

	assert.True(t, errors.Is(err, apperror.ErrPersistence))
}

// =========================================================================
// UPDATE / DELETE
// =========================================================================

func TestUpdate_PartialPatch(t *testing.T) {
	svc := newTestService(newFakeTodoRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTodoInput{Title: strPtr("Buy milk"), Description: strPtr("skimmed")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, model.TodoPatch{Completed: boolPtr(true)})
	require.NoError(t, err)

	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "skimmed", *updated.Description)
}

func TestUpdate_TrimsTitle(t *testing.T) {
	svc := newTestService(newFakeTodoRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTodoInput{Title: strPtr("old")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, model.TodoPatch{Title: strPtr("  new  ")})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
}

func TestUpdate_BlankTitleRejected(t *testing.T) {
	svc := newTestService(newFakeTodoRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTodoInput{Title: strPtr("keep me")})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, model.TodoPatch{Title: strPtr(" ")})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", got.Title)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(newFakeTodoRepo())

	_, err := svc.Update(context.Background(), 3, model.TodoPatch{Completed: boolPtr(true)})

	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDelete(t *testing.T) {
	svc := newTestService(newFakeTodoRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTodoInput{Title: strPtr("bye")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	err = svc.Delete(ctx, created.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

// =========================================================================
// HEALTH
// =========================================================================

func TestHealth(t *testing.T) {
	repo := newFakeTodoRepo()
	svc := newTestService(repo)

	assert.NoError(t, svc.Health(context.Background()))

	repo.pingErr = apperror.Connectivity(errors.New("connection refused"))
	err := svc.Health(context.Background())
	assert.True(t, errors.Is(err, apperror.ErrConnectivity))
}
