package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds a request including its GraphQL round trips
const DefaultRequestTimeout = 30 * time.Second

// Timeout cancels the request context after timeout and answers 503 with the
// JSON error envelope. Backend calls made with the request context are aborted too.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	body, _ := json.Marshal(ErrorResponse{
		Error:   "Service Unavailable",
		Message: "Request timed out after " + timeout.String(),
	})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
