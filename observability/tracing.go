package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zond/simkernel/kernel"
)

// TracingObserver opens one span per Process, from its first start to
// its completion or interruption. Grounded on
// orchestration/tracing/middleware.go's nil-Tracer-is-pass-through
// config pattern: a zero-value TracingObserver (Tracer nil) costs
// nothing and records nothing.
type TracingObserver struct {
	// Tracer creates spans. If nil, every hook is a no-op.
	Tracer trace.Tracer

	ctx          context.Context
	spans        map[*kernel.Process]spanEntry
	resourceWait map[*kernel.GetEvent]trace.Span
}

type spanEntry struct {
	span trace.Span
}

// NewTracingObserver builds a TracingObserver that starts spans on ctx
// using tracer. Passing a nil tracer yields a no-op observer.
func NewTracingObserver(ctx context.Context, tracer trace.Tracer) *TracingObserver {
	return &TracingObserver{
		Tracer:       tracer,
		ctx:          ctx,
		spans:        map[*kernel.Process]spanEntry{},
		resourceWait: map[*kernel.GetEvent]trace.Span{},
	}
}

func (t *TracingObserver) OnProcessStarted(p *kernel.Process) {
	if t.Tracer == nil {
		return
	}
	_, span := t.Tracer.Start(t.ctx, fmt.Sprintf("process:%s", p.Name()),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(attribute.String("simkernel.process.name", p.Name()))
	t.spans[p] = spanEntry{span: span}
}

func (t *TracingObserver) OnProcessYielded(p *kernel.Process, y *kernel.Event) {
	if t.Tracer == nil {
		return
	}
	entry, ok := t.spans[p]
	if !ok {
		return
	}
	entry.span.AddEvent("yield", trace.WithAttributes(
		attribute.Bool("simkernel.event.triggered", y.Triggered()),
	))
}

func (t *TracingObserver) OnProcessCompleted(p *kernel.Process, _ any) {
	if t.Tracer == nil {
		return
	}
	entry, ok := t.spans[p]
	if !ok {
		return
	}
	entry.span.SetStatus(codes.Ok, "")
	entry.span.End()
	delete(t.spans, p)
}

func (t *TracingObserver) OnProcessInterrupted(p *kernel.Process, cause any) {
	if t.Tracer == nil {
		return
	}
	entry, ok := t.spans[p]
	if !ok {
		return
	}
	entry.span.SetStatus(codes.Error, fmt.Sprintf("interrupted: %v", cause))
	entry.span.End()
	delete(t.spans, p)
}

// OnResourceRequested opens a span covering the time a Get request
// spends waiting for capacity, closed by the matching
// OnResourceAcquired. A request satisfied immediately still gets a
// span, just a very short one — that's the useful signal (queueing
// shows up as duration, not as a separate code path).
func (t *TracingObserver) OnResourceRequested(r *kernel.Resource, g *kernel.GetEvent) {
	if t.Tracer == nil {
		return
	}
	_, span := t.Tracer.Start(t.ctx, "resource:wait",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.Int("simkernel.resource.capacity", r.Capacity()),
		attribute.Int("simkernel.resource.amount", g.Amount()),
	)
	t.resourceWait[g] = span
}

// OnResourceAcquired ends the wait span OnResourceRequested opened for
// this GetEvent.
func (t *TracingObserver) OnResourceAcquired(r *kernel.Resource, g *kernel.GetEvent) {
	if t.Tracer == nil {
		return
	}
	span, ok := t.resourceWait[g]
	if !ok {
		return
	}
	span.SetStatus(codes.Ok, "")
	span.End()
	delete(t.resourceWait, g)
}
