package observability

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/zond/simkernel/kernel"
)

func setupTestTracer(t *testing.T) (trace.Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	return provider.Tracer("simkernel-test"), exporter
}

func TestTracingObserverNilTracerIsNoop(t *testing.T) {
	obs := NewTracingObserver(context.Background(), nil)
	env := kernel.New(kernel.WithObserver(obs))
	env.Process(func(y kernel.Yield) (any, error) { return nil, nil })
	if err := env.Run(nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// No tracer configured: hooks must not panic and must track nothing.
	if len(obs.spans) != 0 {
		t.Errorf("spans = %d, want 0 with nil tracer", len(obs.spans))
	}
	if len(obs.resourceWait) != 0 {
		t.Errorf("resourceWait = %d, want 0 with nil tracer", len(obs.resourceWait))
	}
}

func TestTracingObserverRecordsResourceWaitSpan(t *testing.T) {
	tracer, exporter := setupTestTracer(t)
	obs := NewTracingObserver(context.Background(), tracer)
	env := kernel.New(kernel.WithObserver(obs))

	r, err := kernel.NewResource(env, 1)
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	holder, err := r.Request()
	if err != nil {
		t.Fatalf("Request holder: %v", err)
	}
	waiter, err := r.Request()
	if err != nil {
		t.Fatalf("Request waiter: %v", err)
	}
	if len(obs.resourceWait) != 1 {
		t.Fatalf("resourceWait = %d, want 1 while waiter is still queued", len(obs.resourceWait))
	}
	if _, err := r.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if !waiter.Triggered() {
		t.Fatalf("waiter should be granted once holder releases")
	}
	if len(obs.resourceWait) != 0 {
		t.Errorf("resourceWait = %d, want 0 once every request is acquired", len(obs.resourceWait))
	}

	spans := exporter.GetSpans()
	found := 0
	for _, s := range spans {
		if s.Name == "resource:wait" {
			found++
		}
	}
	if found != 2 {
		t.Errorf("recorded %d resource:wait spans, want 2", found)
	}
	_ = holder
}
