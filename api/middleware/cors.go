package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware with a permissive policy: the API serves automated
// shopping agents rather than browsers, so origins are not restricted.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "UCP-Agent", "Simulation-Secret", "X-Requested-With"},
		ExposedHeaders: []string{"X-Request-Id", "Idempotency-Key"},
		MaxAge:         300,
	}).Handler
}
