// Package request carries per-request metadata from the status API down to backend calls.
package request

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey struct{}

// RequestIDHeader carries the per-request correlation ID, both on the status
// API and on GraphQL calls made on its behalf
const RequestIDHeader = "X-Request-ID"

// ClientIP returns the host of the immediate peer. Forwarding headers are only
// honoured when that peer is a loopback proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
		return host
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return host
}

// WithRequestID returns a context carrying id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IDFromContext returns the request ID stored in ctx, or ""
func IDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// RequestID returns the request ID of r, or "" if none was assigned
func RequestID(r *http.Request) string {
	return IDFromContext(r.Context())
}
