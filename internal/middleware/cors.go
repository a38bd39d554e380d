package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS applies the cross-origin policy for the allowed origins.
func CORS(origins []string, next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", headerRequestID},
		ExposedHeaders: []string{headerRequestID},
	})
	return c.Handler(next)
}
