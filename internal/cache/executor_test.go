package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/benvon/flow/internal/graphql"
)

type fakeExecutor struct {
	calls int
	data  json.RawMessage
	err   error
}

func (f *fakeExecutor) Execute(context.Context, graphql.Operation, map[string]any) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

var (
	listOp  = graphql.Operation{Name: "TimeRecords", Query: "query"}
	startOp = graphql.Operation{Name: "TimeStart", Query: "mutation", Mutation: true}
	errDown = fmt.Errorf("%w: connection refused", graphql.ErrNetwork)
)

func TestExecutor_Policies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		policy    FetchPolicy
		primed    bool
		nextErr   error
		wantData  string
		wantErr   bool
		wantCalls int
	}{
		{"network-only success", NetworkOnly, true, nil, `"fresh"`, false, 1},
		{"network-only ignores cache on failure", NetworkOnly, true, errDown, "", true, 1},
		{"network-first falls back to cache", NetworkFirst, true, errDown, `"cached"`, false, 1},
		{"network-first without cache", NetworkFirst, false, errDown, "", true, 1},
		{"network-first does not hide api errors", NetworkFirst, true, &graphql.APIError{Operation: "TimeRecords"}, "", true, 1},
		{"cache-first hit", CacheFirst, true, nil, `"cached"`, false, 0},
		{"cache-first miss", CacheFirst, false, nil, `"fresh"`, false, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store := NewMemoryStore(0)
			if tt.primed {
				key, _ := cacheKey(sessionScope(""), listOp, nil)
				_ = store.Set(ctx, key, []byte(`"cached"`), 0)
			}

			next := &fakeExecutor{data: json.RawMessage(`"fresh"`), err: tt.nextErr}
			e := NewExecutor(next, store, tt.policy, time.Minute, nil)

			data, err := e.Execute(ctx, listOp, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(data) != tt.wantData {
				t.Errorf("Execute() data = %s, want %s", data, tt.wantData)
			}
			if next.calls != tt.wantCalls {
				t.Errorf("expected %d backend calls, got %d", tt.wantCalls, next.calls)
			}
		})
	}
}

func TestExecutor_MutationInvalidates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(0)
	next := &fakeExecutor{data: json.RawMessage(`{"timeRecords":[]}`)}
	e := NewExecutor(next, store, CacheFirst, 0, nil)

	if _, err := e.Execute(ctx, listOp, nil); err != nil {
		t.Fatalf("query error = %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected query to be cached, got %d entries", store.Len())
	}

	if _, err := e.Execute(ctx, startOp, nil); err != nil {
		t.Fatalf("mutation error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected mutation to invalidate cache, got %d entries", store.Len())
	}
}

func TestExecutor_MutationErrorKeepsCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(0)
	_ = store.Set(ctx, "k", []byte("v"), 0)
	next := &fakeExecutor{err: errors.New("boom")}
	e := NewExecutor(next, store, NetworkOnly, 0, nil)

	if _, err := e.Execute(ctx, startOp, nil); err == nil {
		t.Fatal("expected error")
	}
	if store.Len() != 1 {
		t.Error("failed mutation must not invalidate the cache")
	}
}

func TestCacheKey_VariablesMatter(t *testing.T) {
	t.Parallel()

	a, _ := cacheKey("s", listOp, map[string]any{"status": "pending"})
	b, _ := cacheKey("s", listOp, map[string]any{"status": "completed"})
	c, _ := cacheKey("s", listOp, map[string]any{"status": "pending"})
	if a == b {
		t.Error("different variables must produce different keys")
	}
	if a != c {
		t.Error("equal variables must produce equal keys")
	}
}

func TestExecutor_CacheIsScopedToSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(0)

	alice := NewExecutor(&fakeExecutor{data: json.RawMessage(`"alice"`)}, store, NetworkFirst, time.Minute, nil, WithSessionToken("token-a"))
	if _, err := alice.Execute(ctx, listOp, nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	bob := NewExecutor(&fakeExecutor{err: errDown}, store, NetworkFirst, time.Minute, nil, WithSessionToken("token-b"))
	if data, err := bob.Execute(ctx, listOp, nil); err == nil {
		t.Errorf("Expected network error for another session, got cached data %s", data)
	}

	aliceOffline := NewExecutor(&fakeExecutor{err: errDown}, store, NetworkFirst, time.Minute, nil, WithSessionToken("token-a"))
	data, err := aliceOffline.Execute(ctx, listOp, nil)
	if err != nil {
		t.Fatalf("Expected cached fallback for the same session, got %v", err)
	}
	if string(data) != `"alice"` {
		t.Errorf("Expected data \"alice\", got %s", data)
	}
}

func TestParseFetchPolicy(t *testing.T) {
	t.Parallel()

	if p, err := ParseFetchPolicy(""); err != nil || p != NetworkOnly {
		t.Errorf("ParseFetchPolicy(\"\") = %v, %v", p, err)
	}
	if _, err := ParseFetchPolicy("sometimes"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
