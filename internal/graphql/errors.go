package graphql

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNetwork wraps transport failures: the backend could not be reached or the body could not be read
	ErrNetwork = errors.New("network error")
	// ErrNoData indicates a response without errors and without a data field
	ErrNoData = errors.New("response contained no data")
)

// Error is a single entry of a GraphQL response's errors list
type Error struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// APIError represents a failed GraphQL operation: a non-2xx status or a non-empty errors list
type APIError struct {
	Operation  string
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("graphql %s: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("graphql %s: %s", e.Operation, strings.Join(e.Messages, "; "))
}

// IsUnauthorized checks if the backend rejected the session token
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
		return true
	}
	for _, msg := range apiErr.Messages {
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "unauthorized") || strings.Contains(lower, "not authenticated") {
			return true
		}
	}
	return false
}

// IsNetworkError checks if err is a transport failure rather than an API response
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// UserMessage renders err for error notifications shown to the user
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case IsUnauthorized(err):
		return "Not signed in or session expired"
	case IsNetworkError(err):
		return "Network error: backend unreachable"
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Messages) > 0 {
		return apiErr.Messages[0]
	}
	return err.Error()
}
