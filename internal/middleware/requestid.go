package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/xid"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds client-supplied IDs so they can't bloat logs.
const maxRequestIDLength = 64

// RequestID tags every request with an ID and echoes it in the response.
//
// A well-formed incoming X-Request-ID is kept so calls can be traced across
// services; otherwise a fresh xid is generated (20 URL-safe characters,
// sortable by time). The ID is stored under chi's RequestIDKey, so
// chimiddleware.GetReqID works anywhere downstream.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = xid.New().String()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
