package flowapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/benvon/flow/internal/graphql"
)

type capturedRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

// fakeBackend serves canned GraphQL responses keyed by operation name
type fakeBackend struct {
	mu        sync.Mutex
	responses map[string]string
	requests  []capturedRequest
}

func newFakeBackend(t *testing.T, responses map[string]string) (*fakeBackend, graphql.Executor) {
	t.Helper()
	fb := &fakeBackend{responses: responses}
	server := httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(server.Close)
	return fb, graphql.NewClient(server.URL, graphql.WithToken("test-token"))
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	var req capturedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fb.mu.Lock()
	fb.requests = append(fb.requests, req)
	body, ok := fb.responses[req.OperationName]
	fb.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"errors":[{"message":"unknown operation"}]}`))
		return
	}
	_, _ = w.Write([]byte(body))
}

func (fb *fakeBackend) last() capturedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.requests) == 0 {
		return capturedRequest{}
	}
	return fb.requests[len(fb.requests)-1]
}
