package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
	"https://voxindia.co",
	"https://www.voxindia.co",
}

// CORS returns middleware that applies the storefront origin policy. Extra
// origins from configuration are appended to the defaults.
func CORS(extraOrigins []string) func(http.Handler) http.Handler {
	origins := append([]string{}, defaultCORSOrigins...)
	origins = append(origins, extraOrigins...)

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-QC-Session", "X-Requested-With"},
		ExposedHeaders:   []string{"X-QC-Session"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
