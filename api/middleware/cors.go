package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:19006", // Expo web dev server
	"http://localhost:3000",  // local web dev
}

// CORS returns middleware applying the API's allowed origin policy.
// Native mobile clients bypass CORS; these origins cover web builds.
func CORS(extraOrigins []string) func(http.Handler) http.Handler {
	origins := append([]string(nil), defaultCORSOrigins...)
	origins = append(origins, extraOrigins...)

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
