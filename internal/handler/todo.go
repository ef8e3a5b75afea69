package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/model"
	"github.com/sakif/todo-service/internal/service"
)

// TodoHandler exposes CRUD over todos as JSON.
//
// The handler never touches the database: it decodes the typed request
// body, calls the service and maps the returned error with writeError.
type TodoHandler struct {
	service *service.TodoService
	logger  *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{
		service: svc,
		logger:  logger,
	}
}

// Routes returns the todo sub-router, meant to be mounted at /todos.
//
//	GET    /      → HandleList
//	POST   /      → HandleCreate
//	GET    /{id}  → HandleGetByID
//	PUT    /{id}  → HandleUpdate
//	DELETE /{id}  → HandleDelete
func (h *TodoHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGetByID)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	return r
}

// todoID reads the {id} URL parameter. Anything that is not a positive
// integer cannot name a todo, so it is reported as not found.
func todoID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NotFound("Todo")
	}
	return id, nil
}

// HandleList returns all todos as a bare JSON array.
//
// HTTP: GET /api/todos
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	todos, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// HandleGetByID returns one todo.
//
// HTTP: GET /api/todos/{id}
func (h *TodoHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	todo, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// HandleCreate stores a new todo.
//
// HTTP: POST /api/todos
// REQUEST BODY: {"title": "Buy milk", "description": "2 litres", "completed": false}
//
// A missing body is treated the same as a missing title.
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CreateTodoInput
	if _, err := decodeJSON(w, r, &in); err != nil {
		h.logger.Warn("invalid todo JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	todo, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// HandleUpdate applies a partial update.
//
// HTTP: PUT /api/todos/{id}
// REQUEST BODY: any subset of {"title", "description", "completed"}
func (h *TodoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var patch model.TodoPatch
	if _, err := decodeJSON(w, r, &patch); err != nil {
		h.logger.Warn("invalid todo patch JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	todo, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// HandleDelete removes a todo.
//
// HTTP: DELETE /api/todos/{id}
func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Todo deleted"})
}
