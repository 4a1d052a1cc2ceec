package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benvon/flow/internal/request"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var timeRecordsOp = Operation{Name: "TimeRecords", Query: "query TimeRecords { timeRecords { id } }"}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, req gqlRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		handler(w, r, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Execute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		validate func(*testing.T, json.RawMessage, error)
	}{
		{
			name:   "data returned",
			status: http.StatusOK,
			body:   `{"data":{"timeRecords":[{"id":"1"}]}}`,
			validate: func(t *testing.T, data json.RawMessage, err error) {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				var out struct {
					TimeRecords []struct{ ID string } `json:"timeRecords"`
				}
				if err := Decode(data, &out); err != nil {
					t.Fatalf("Decode() error = %v", err)
				}
				if len(out.TimeRecords) != 1 || out.TimeRecords[0].ID != "1" {
					t.Errorf("unexpected records %+v", out.TimeRecords)
				}
			},
		},
		{
			name:   "graphql errors",
			status: http.StatusOK,
			body:   `{"data":null,"errors":[{"message":"record not found"}]}`,
			validate: func(t *testing.T, _ json.RawMessage, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected APIError, got %v", err)
				}
				if apiErr.Messages[0] != "record not found" {
					t.Errorf("unexpected message %q", apiErr.Messages[0])
				}
				if UserMessage(err) != "record not found" {
					t.Errorf("unexpected user message %q", UserMessage(err))
				}
			},
		},
		{
			name:   "unauthorized status",
			status: http.StatusUnauthorized,
			body:   `unauthorized`,
			validate: func(t *testing.T, _ json.RawMessage, err error) {
				if !IsUnauthorized(err) {
					t.Errorf("expected unauthorized error, got %v", err)
				}
			},
		},
		{
			name:   "unauthorized message",
			status: http.StatusOK,
			body:   `{"errors":[{"message":"Unauthorized"}]}`,
			validate: func(t *testing.T, _ json.RawMessage, err error) {
				if !IsUnauthorized(err) {
					t.Errorf("expected unauthorized error, got %v", err)
				}
			},
		},
		{
			name:   "null data",
			status: http.StatusOK,
			body:   `{"data":null}`,
			validate: func(t *testing.T, _ json.RawMessage, err error) {
				if !errors.Is(err, ErrNoData) {
					t.Errorf("expected ErrNoData, got %v", err)
				}
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `{not json`,
			validate: func(t *testing.T, _ json.RawMessage, err error) {
				if err == nil || IsNetworkError(err) {
					t.Errorf("expected decode error, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			c := NewClient(srv.URL)
			data, err := c.Execute(context.Background(), timeRecordsOp, nil)
			tt.validate(t, data, err)
		})
	}
}

func TestClient_Headers(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {
		if got := r.Header.Get("Authorization"); got != "tok-123" {
			t.Errorf("Expected Authorization 'tok-123', got '%s'", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("Expected X-Request-ID header")
		}
		if req.OperationName != "TagTimeRecord" {
			t.Errorf("Expected operationName 'TagTimeRecord', got '%s'", req.OperationName)
		}
		if req.Variables["tag"] != "work" {
			t.Errorf("Expected tag variable 'work', got %v", req.Variables["tag"])
		}
		_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
	})

	c := NewClient(srv.URL, WithToken("tok-123"))
	op := Operation{Name: "TagTimeRecord", Query: "mutation TagTimeRecord", Mutation: true}
	if _, err := c.Execute(context.Background(), op, map[string]any{"id": "1", "tag": "work"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestClient_ForwardsRequestID(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {
		if got := r.Header.Get(request.RequestIDHeader); got != "req-7" {
			t.Errorf("Expected X-Request-ID 'req-7', got '%s'", got)
		}
		_, _ = w.Write([]byte(`{"data":{"timeRecords":[]}}`))
	})

	ctx := request.WithRequestID(context.Background(), "req-7")
	if _, err := NewClient(srv.URL).Execute(ctx, timeRecordsOp, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestClient_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, WithTimeout(time.Second))
	_, err := c.Execute(context.Background(), timeRecordsOp, nil)
	if !IsNetworkError(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if UserMessage(err) != "Network error: backend unreachable" {
		t.Errorf("unexpected user message %q", UserMessage(err))
	}
}

func TestClient_RecordsSpan(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exporter))

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request, req gqlRequest) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"boom"}]}`))
	})

	c := NewClient(srv.URL, WithTracer(tp.Tracer("test")))
	if _, err := c.Execute(context.Background(), timeRecordsOp, nil); err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("Expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "graphql.TimeRecords" {
		t.Errorf("Expected span name 'graphql.TimeRecords', got '%s'", spans[0].Name)
	}
	if spans[0].Status.Code.String() != "Error" {
		t.Errorf("Expected error status, got %s", spans[0].Status.Code)
	}
}
