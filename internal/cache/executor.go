package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benvon/flow/internal/graphql"
	"go.uber.org/zap"
)

// FetchPolicy decides how queries use the cache
type FetchPolicy string

const (
	// NetworkOnly always asks the backend; results are still written to the cache
	NetworkOnly FetchPolicy = "network-only"
	// NetworkFirst asks the backend and serves the cache only when the backend is unreachable
	NetworkFirst FetchPolicy = "network-first"
	// CacheFirst serves the cache when it has an entry and asks the backend otherwise
	CacheFirst FetchPolicy = "cache-first"
)

// ParseFetchPolicy validates a policy name
func ParseFetchPolicy(s string) (FetchPolicy, error) {
	switch FetchPolicy(s) {
	case NetworkOnly, NetworkFirst, CacheFirst:
		return FetchPolicy(s), nil
	case "":
		return NetworkOnly, nil
	default:
		return "", fmt.Errorf("unknown fetch policy %q", s)
	}
}

// Executor wraps a graphql.Executor with a response cache.
// Mutations always go to the backend and invalidate every cached query.
type Executor struct {
	next   graphql.Executor
	store  Store
	policy FetchPolicy
	ttl    time.Duration
	logger *zap.Logger
	scope  string
}

// ExecutorOption configures an Executor
type ExecutorOption func(*Executor)

// WithSessionToken keys cached responses by a hash of the session token
func WithSessionToken(token string) ExecutorOption {
	return func(e *Executor) { e.scope = sessionScope(token) }
}

// NewExecutor creates a caching executor
func NewExecutor(next graphql.Executor, store Store, policy FetchPolicy, ttl time.Duration, logger *zap.Logger, opts ...ExecutorOption) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{next: next, store: store, policy: policy, ttl: ttl, logger: logger, scope: sessionScope("")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute implements graphql.Executor
func (e *Executor) Execute(ctx context.Context, op graphql.Operation, vars map[string]any) (json.RawMessage, error) {
	if op.Mutation {
		data, err := e.next.Execute(ctx, op, vars)
		if err != nil {
			return nil, err
		}
		if invErr := e.store.InvalidateAll(ctx); invErr != nil {
			e.logger.Warn("cache_invalidation_failed", zap.String("operation", op.Name), zap.Error(invErr))
		}
		return data, nil
	}

	key, err := cacheKey(e.scope, op, vars)
	if err != nil {
		return nil, err
	}

	if e.policy == CacheFirst {
		if data, ok := e.lookup(ctx, key, op); ok {
			return data, nil
		}
	}

	data, err := e.next.Execute(ctx, op, vars)
	if err != nil {
		if e.policy == NetworkFirst && graphql.IsNetworkError(err) {
			if cached, ok := e.lookup(ctx, key, op); ok {
				e.logger.Info("serving_cached_response", zap.String("operation", op.Name))
				return cached, nil
			}
		}
		return nil, err
	}

	if setErr := e.store.Set(ctx, key, data, e.ttl); setErr != nil {
		e.logger.Warn("cache_write_failed", zap.String("operation", op.Name), zap.Error(setErr))
	}
	return data, nil
}

func (e *Executor) lookup(ctx context.Context, key string, op graphql.Operation) (json.RawMessage, bool) {
	data, ok, err := e.store.Get(ctx, key)
	if err != nil {
		e.logger.Warn("cache_read_failed", zap.String("operation", op.Name), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return json.RawMessage(data), true
}

func sessionScope(token string) string {
	if token == "" {
		return "anon"
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

func cacheKey(scope string, op graphql.Operation, vars map[string]any) (string, error) {
	// encoding/json sorts map keys, so equal variables hash equally
	b, err := json.Marshal(vars)
	if err != nil {
		return "", fmt.Errorf("failed to build cache key for %s: %w", op.Name, err)
	}
	sum := sha256.Sum256(b)
	return scope + ":" + op.Name + ":" + hex.EncodeToString(sum[:8]), nil
}
