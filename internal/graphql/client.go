package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/benvon/flow/internal/logger"
	"github.com/benvon/flow/internal/request"
	"github.com/benvon/flow/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a single GraphQL round trip
	DefaultTimeout = 15 * time.Second
	// maxResponseBytes caps how much of a response body is read
	maxResponseBytes = 10 << 20
)

// Operation describes a named GraphQL document
type Operation struct {
	Name     string
	Query    string
	Mutation bool
}

// Kind returns "mutation" or "query"
func (o Operation) Kind() string {
	if o.Mutation {
		return "mutation"
	}
	return "query"
}

// Executor runs an operation and returns the raw data object of the response
type Executor interface {
	Execute(ctx context.Context, op Operation, vars map[string]any) (json.RawMessage, error)
}

type gqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []Error         `json:"errors,omitempty"`
}

// Client is a GraphQL-over-HTTP client
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
	tracer     trace.Tracer
	debug      bool
}

// Option configures a Client
type Option func(*Client)

// WithToken sets the value sent in the Authorization header
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDebug enables logging of request and response bodies
func WithDebug(debug bool) Option {
	return func(c *Client) { c.debug = debug }
}

// WithTracer overrides the tracer used for operation spans
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// NewClient creates a client for the GraphQL endpoint
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
		tracer:     telemetry.Tracer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured endpoint URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Execute posts the operation and returns the data object
func (c *Client) Execute(ctx context.Context, op Operation, vars map[string]any) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "graphql."+op.Name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("graphql.operation.name", op.Name),
			attribute.String("graphql.operation.type", op.Kind()),
		),
	)
	defer span.End()

	start := time.Now()
	data, err := c.execute(ctx, op, vars)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("graphql_request_failed",
			zap.String("operation", op.Name),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("error", logger.SanitizeError(err)),
		)
		return nil, err
	}

	c.logger.Debug("graphql_request_completed",
		zap.String("operation", op.Name),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return data, nil
}

func (c *Client) execute(ctx context.Context, op Operation, vars map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(gqlRequest{Query: op.Query, OperationName: op.Name, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", op.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := request.IDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(request.RequestIDHeader, requestID)
	if c.token != "" {
		// The backend expects the bare session token, without a scheme
		req.Header.Set("Authorization", c.token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	if c.debug {
		c.logger.Debug("graphql_request",
			zap.String("operation", op.Name),
			zap.String("body", logger.SanitizeDebugContent(string(body))),
		)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNetwork, op.Name, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %v", ErrNetwork, op.Name, err)
	}

	if c.debug {
		c.logger.Debug("graphql_response",
			zap.String("operation", op.Name),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", logger.SanitizeDebugContent(string(raw))),
		)
	}

	var parsed response
	decodeErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Operation: op.Name, StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Messages = messages(parsed.Errors)
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", op.Name, decodeErr)
	}
	if len(parsed.Errors) > 0 {
		return nil, &APIError{Operation: op.Name, StatusCode: resp.StatusCode, Messages: messages(parsed.Errors)}
	}
	if len(parsed.Data) == 0 || string(parsed.Data) == "null" {
		return nil, fmt.Errorf("%s: %w", op.Name, ErrNoData)
	}

	return parsed.Data, nil
}

func messages(errs []Error) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Message)
	}
	return out
}

// Decode unmarshals a data object into out
func Decode(data json.RawMessage, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

var pingOperation = Operation{Name: "Ping", Query: `query Ping { __typename }`}

// Ping checks that the endpoint answers a trivial query
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Execute(ctx, pingOperation, nil)
	return err
}
