package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

func TestHealthChecker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mode       string
		backend    Pinger
		cache      Pinger
		wantStatus int
		wantHealth string
		wantChecks map[string]string
	}{
		{
			name:       "basic mode skips checks",
			backend:    &mockPinger{err: errors.New("down")},
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
		},
		{
			name:       "extended mode all healthy",
			mode:       "extended",
			backend:    &mockPinger{},
			cache:      &mockPinger{},
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
			wantChecks: map[string]string{"graphql_backend": "healthy", "cache": "healthy"},
		},
		{
			name:       "extended mode backend down",
			mode:       "extended",
			backend:    &mockPinger{err: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "unhealthy",
			wantChecks: map[string]string{"graphql_backend": "unhealthy: connection refused", "cache": "not configured"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthChecker(tt.backend, tt.cache)
			path := "/healthz"
			if tt.mode != "" {
				path += "?mode=" + tt.mode
			}
			w := httptest.NewRecorder()
			h.HealthCheck(w, httptest.NewRequest("GET", path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}

			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Status != tt.wantHealth {
				t.Errorf("Expected status %q, got %q", tt.wantHealth, resp.Status)
			}
			if len(resp.Checks) != len(tt.wantChecks) {
				t.Errorf("Expected checks %v, got %v", tt.wantChecks, resp.Checks)
			}
			for k, v := range tt.wantChecks {
				if resp.Checks[k] != v {
					t.Errorf("Expected check %s=%q, got %q", k, v, resp.Checks[k])
				}
			}
		})
	}
}
