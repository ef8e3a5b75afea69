package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError so the wire
// contract stays uniform:
//
//	success → the bare resource (object or array)
//	failure → {"error": "<short message>", "message": "<optional detail>"}

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/todo-service/internal/apperror"
)

// maxBodyBytes caps request bodies; a todo is a few hundred bytes at most.
const maxBodyBytes = 1 << 20

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`             // Short, client-facing message (e.g. "Todo not found")
	Message string `json:"message,omitempty"` // Optional driver detail for persistence failures
}

// MessageResponse is the body of responses that carry no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// The status line is already out; all we can do is log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// ERROR MAPPING:
//
//	apperror.ErrValidation   → 400
//	apperror.ErrNotFound     → 404
//	apperror.ErrPersistence  → 500 (with driver detail in "message")
//	apperror.ErrConnectivity → 503
//	apperror.ErrTooLarge     → 413
//	anything else            → 500, no detail
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: appErr.Message})
	case errors.Is(err, apperror.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: appErr.Message})
	case errors.Is(err, apperror.ErrTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: appErr.Message})
	case errors.Is(err, apperror.ErrConnectivity):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: appErr.Message, Message: appErr.Detail()})
	case errors.Is(err, apperror.ErrPersistence):
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: appErr.Message, Message: appErr.Detail()})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// decodeJSON reads exactly one JSON value from the request body into dst.
//
// It returns (false, nil) for an empty body so callers can decide what
// "no body" means for their operation. Anything after the first value, or
// anything that is not well-formed JSON of the right shape, is a validation
// AppError. A body over maxBodyBytes is ErrTooLarge.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) (bool, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return false, decodeError(err)
	}
	return true, nil
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.TooLarge(tooLarge.Limit)
	}
	return apperror.ValidationFailed("body", "Invalid JSON body")
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Resource not found"})
}

// MethodNotAllowed answers known routes hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
}

// Home is the API's landing route.
func Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Welcome to the Todo API"})
}
