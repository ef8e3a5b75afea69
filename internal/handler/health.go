package handler

import (
	"errors"
	"net/http"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/service"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
	Message  string `json:"message,omitempty"`
}

// HealthHandler reports whether the service can reach its database.
type HealthHandler struct {
	service *service.TodoService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(svc *service.TodoService) *HealthHandler {
	return &HealthHandler{service: svc}
}

// HandleHealth runs a no-op query against the database.
//
// HTTP: GET /api/health
//
//	200 {"status":"ok","database":true}
//	503 {"status":"error","database":false,"message":"..."}
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Health(r.Context()); err != nil {
		message := err.Error()
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Detail() != "" {
			message = appErr.Detail()
		}
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "error",
			Database: false,
			Message:  message,
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: true})
}
