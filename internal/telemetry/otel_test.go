package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
)

func TestInitTracer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The exporter connects lazily, so an unreachable collector is not an error here
	tp, err := InitTracer(ctx, ServiceName, "localhost:4318")
	if err != nil {
		t.Fatalf("InitTracer() error = %v", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = Shutdown(shutdownCtx, tp)
	}()

	if otel.GetTracerProvider() != tp {
		t.Error("Expected InitTracer to install the global tracer provider")
	}
	fields := otel.GetTextMapPropagator().Fields()
	hasTraceParent := false
	for _, f := range fields {
		if f == "traceparent" {
			hasTraceParent = true
		}
	}
	if !hasTraceParent {
		t.Errorf("Expected traceparent propagation, got fields %v", fields)
	}

	_, span := Tracer().Start(ctx, "graphql.TimeRecords")
	if !span.SpanContext().IsValid() {
		t.Error("Expected Tracer() to produce recording spans")
	}
	span.End()
}

func TestShutdown_NilProvider(t *testing.T) {
	if err := Shutdown(context.Background(), nil); err != nil {
		t.Errorf("Shutdown() with nil provider should not error, got: %v", err)
	}
}
