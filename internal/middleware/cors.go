package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// DefaultAllowedOrigin is used when no origins are configured
const DefaultAllowedOrigin = "http://localhost:3000"

// CORS wraps rs/cors with the methods and headers the status API uses
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := normalizeOrigins(allowedOrigins)
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: false,
		MaxAge:           86400,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
	})
	return c.Handler
}

// normalizeOrigins trims, drops empties and duplicates, falling back to DefaultAllowedOrigin
func normalizeOrigins(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, origin := range in {
		trimmed := strings.TrimRight(strings.TrimSpace(origin), "/")
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		out = []string{DefaultAllowedOrigin}
	}
	return out
}
