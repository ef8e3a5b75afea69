package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows browser requests from the configured origins only.
//
// Preflight (OPTIONS) requests are answered by the cors handler itself and
// never reach the API handlers. An empty allow-list permits no cross-origin
// requests at all (go-chi/cors would otherwise treat it as "*").
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(allowedOrigins) == 0 {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}
	return cors.Handler(opts)
}
