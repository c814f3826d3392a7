package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"fuelbreak/internal/infrastructure"
)

const (
	TracerName = "fuelbreak.operation"
)

// OperationTracer wraps run and step execution in spans and feeds the
// step metrics.
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.AnalysisMetrics
}

// NewOperationTracer creates a tracer from the run's providers. A nil
// providers value yields a tracer that records nothing.
func NewOperationTracer(providers *infrastructure.OTelProviders, metrics *infrastructure.AnalysisMetrics) *OperationTracer {
	var tracer trace.Tracer
	if providers != nil && providers.Tracer != nil {
		tracer = providers.Tracer
	} else {
		tracer = tracenoop.NewTracerProvider().Tracer(TracerName)
	}
	return &OperationTracer{tracer: tracer, metrics: metrics}
}

// TraceRun creates the root span of a run
func (ot *OperationTracer) TraceRun(ctx context.Context, state *RunState) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("run.id", state.ID),
	}
	if state.Paths != nil {
		attrs = append(attrs,
			attribute.String("run.input", state.Paths.InputFile),
			attribute.String("run.output_dir", state.Paths.OutputDir))
	}
	return ot.tracer.Start(ctx, "run.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// TraceStep creates a span for one step
func (ot *OperationTracer) TraceStep(ctx context.Context, runID string, step Step) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, fmt.Sprintf("step.%s", step.ID()),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// RecordStepCompletion closes out a step span and records its duration
func (ot *OperationTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	infrastructure.RecordStepMetrics(ctx, ot.metrics, stepID, duration, err)
}

// RecordRunCompletion closes out the run span
func (ot *OperationTracer) RecordRunCompletion(span trace.Span, state *RunState, err error) {
	span.SetAttributes(
		attribute.String("run.status", string(state.GetStatus())),
		attribute.Int("run.rows", state.Table.Len()),
		attribute.Int("run.artifacts", len(state.Manifest.Artifacts)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
