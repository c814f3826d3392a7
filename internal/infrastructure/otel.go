package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"fuelbreak/internal/config"
	"fuelbreak/pkg/contracts"
)

const (
	MeterName = "fuelbreak"
)

// OTelProviders holds the OpenTelemetry providers of one run
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Logger         *slog.Logger

	metricsFile string
	traceFile   *os.File
}

// InitializeOTel sets up tracing to a file and metrics into a private
// Prometheus registry. With telemetry disabled it returns no-op providers.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = GetLogger()
	}

	providers := &OTelProviders{
		Logger: logger,
	}

	if !cfg.Enabled {
		providers.Tracer = tracenoop.NewTracerProvider().Tracer(MeterName)
		providers.Meter = metricnoop.NewMeterProvider().Meter(MeterName)
		logger.Debug("OpenTelemetry disabled")
		return providers, nil
	}

	ctx := context.Background()
	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.String("trace_file", cfg.TraceFile),
		slog.String("metrics_file", cfg.MetricsFile))

	res := createResource(cfg)

	if err := initializeTracing(cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := initializeMetrics(cfg, res, providers); err != nil {
		providers.closeTraceFile()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg config.TelemetryConfig) *resource.Resource {
	name := cfg.ServiceName
	if name == "" {
		name = config.AppName
	}
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(name),
		semconv.ServiceVersion(contracts.Version),
		attribute.String("deployment.environment", cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

// initializeTracing exports spans synchronously as JSON to the trace file
func initializeTracing(cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	if cfg.TraceFile == "" {
		providers.Tracer = tracenoop.NewTracerProvider().Tracer(MeterName)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}
	file, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(file),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// A batch run ends right after its last span, so export synchronously
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(contracts.Version))
	providers.traceFile = file

	otel.SetTracerProvider(tp)
	return nil
}

// initializeMetrics registers the OTel Prometheus exporter on a private registry
func initializeMetrics(cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(contracts.Version))
	providers.Registry = registry
	providers.metricsFile = cfg.MetricsFile

	otel.SetMeterProvider(mp)
	return nil
}

// AnalysisMetrics holds the instruments recorded during a run
type AnalysisMetrics struct {
	RowsLoaded       metric.Int64Counter
	StepDuration     metric.Float64Histogram
	StepErrors       metric.Int64Counter
	ArtifactsWritten metric.Int64Counter
	ModelAdjRSquared metric.Float64Gauge
}

// CreateAnalysisMetrics creates the run's instruments on the given meter
func CreateAnalysisMetrics(meter metric.Meter) (*AnalysisMetrics, error) {
	rowsLoaded, err := meter.Int64Counter(
		"fuelbreak.rows.loaded",
		metric.WithDescription("Observations read from the input file"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"fuelbreak.step.duration",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepErrors, err := meter.Int64Counter(
		"fuelbreak.step.errors",
		metric.WithDescription("Pipeline steps that returned an error"),
	)
	if err != nil {
		return nil, err
	}

	artifacts, err := meter.Int64Counter(
		"fuelbreak.artifacts.written",
		metric.WithDescription("Files written to the output directory"),
	)
	if err != nil {
		return nil, err
	}

	adjR2, err := meter.Float64Gauge(
		"fuelbreak.model.adj_rsquared",
		metric.WithDescription("Adjusted R squared of the intervention model"),
	)
	if err != nil {
		return nil, err
	}

	return &AnalysisMetrics{
		RowsLoaded:       rowsLoaded,
		StepDuration:     stepDuration,
		StepErrors:       stepErrors,
		ArtifactsWritten: artifacts,
		ModelAdjRSquared: adjR2,
	}, nil
}

// RecordRowsLoaded records the number of observations read
func RecordRowsLoaded(ctx context.Context, m *AnalysisMetrics, rows int) {
	if m == nil {
		return
	}
	m.RowsLoaded.Add(ctx, int64(rows))
}

// RecordStepMetrics records the duration and outcome of a pipeline step
func RecordStepMetrics(ctx context.Context, m *AnalysisMetrics, stepID string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("step", stepID),
		attribute.Bool("success", err == nil),
	)
	m.StepDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.StepErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("step", stepID)))
	}
}

// RecordArtifact counts a written file by kind
func RecordArtifact(ctx context.Context, m *AnalysisMetrics, kind string) {
	if m == nil {
		return
	}
	m.ArtifactsWritten.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordModelFit records the adjusted R squared of a fitted model
func RecordModelFit(ctx context.Context, m *AnalysisMetrics, target string, adjRSquared float64) {
	if m == nil {
		return
	}
	m.ModelAdjRSquared.Record(ctx, adjRSquared, metric.WithAttributes(attribute.String("target", target)))
}

// WriteMetrics writes the registry as a Prometheus textfile
func (p *OTelProviders) WriteMetrics() error {
	if p.Registry == nil || p.metricsFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p.metricsFile), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(p.metricsFile, p.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Shutdown flushes metrics to disk and shuts down the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if err := p.WriteMetrics(); err != nil {
		errs = append(errs, err)
	}

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	p.closeTraceFile()

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.DebugContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

func (p *OTelProviders) closeTraceFile() {
	if p.traceFile != nil {
		p.traceFile.Close()
		p.traceFile = nil
	}
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}
