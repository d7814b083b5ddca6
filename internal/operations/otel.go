package operations

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	TracerName = "lblreport.operations"
)

// RunTracer provides OpenTelemetry spans for the run and its steps
type RunTracer struct {
	tracer trace.Tracer
}

// NewRunTracer creates a tracer from the global provider. With no provider
// installed the spans are no-ops.
func NewRunTracer() *RunTracer {
	return &RunTracer{tracer: otel.Tracer(TracerName)}
}

// NewRunTracerWithProvider creates a tracer from tp instead of the global
// provider.
func NewRunTracerWithProvider(tp trace.TracerProvider) *RunTracer {
	return &RunTracer{tracer: tp.Tracer(TracerName)}
}

// TraceRun creates a span for the entire run
func (rt *RunTracer) TraceRun(ctx context.Context, state *RunState) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "run.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", state.ID),
			attribute.String("run.date", state.Date.Format("2006-01-02")),
		),
	)
}

// TraceStep creates a span for an individual step
func (rt *RunTracer) TraceStep(ctx context.Context, runID string, step Step) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "run.step."+step.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// RecordStepCompletion annotates the step span with its outcome
func (rt *RunTracer) RecordStepCompletion(span trace.Span, s *StepState) {
	span.SetAttributes(
		attribute.String("step.status", string(s.Status)),
		attribute.Float64("step.duration_seconds", s.Duration().Seconds()),
	)
	if s.Error != nil {
		span.RecordError(s.Error)
		span.SetStatus(codes.Error, string(KindOf(s.Error)))
		return
	}
	span.SetStatus(codes.Ok, "")
}

// RecordRunCompletion annotates the run span with its outcome
func (rt *RunTracer) RecordRunCompletion(span trace.Span, state *RunState, err error) {
	span.SetAttributes(attribute.String("run.status", string(state.Status)))
	if state.Classification != nil {
		span.SetAttributes(
			attribute.Int("run.action_items", len(state.Classification.ActionItems)),
			attribute.Int("run.front_row_joes", len(state.Classification.FrontRowJoes)),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
