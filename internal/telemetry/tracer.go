// Package telemetry configures OpenTelemetry tracing for the service.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// NewTracerProvider creates a TracerProvider that writes every finished span
// to logger at debug level. Spans are exported synchronously as they end.
func NewTracerProvider(serviceName string, logger *slog.Logger) *sdktrace.TracerProvider {
	if logger == nil {
		logger = slog.Default()
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)),
	)
	if err != nil {
		logger.Warn("failed to create resource, using default", "error", err)
		res = resource.Default()
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(NewLogSpanExporter(logger))),
		sdktrace.WithResource(res),
	)
}

// LogSpanExporter implements sdktrace.SpanExporter by logging spans.
type LogSpanExporter struct {
	logger *slog.Logger
}

var _ sdktrace.SpanExporter = (*LogSpanExporter)(nil)

// NewLogSpanExporter creates a LogSpanExporter writing to logger.
func NewLogSpanExporter(logger *slog.Logger) *LogSpanExporter {
	return &LogSpanExporter{logger: logger}
}

// ExportSpans logs one record per span. It never fails.
func (e *LogSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		args := []any{
			"span", span.Name(),
			"trace_id", span.SpanContext().TraceID().String(),
			"span_id", span.SpanContext().SpanID().String(),
			"duration", span.EndTime().Sub(span.StartTime()).Round(time.Microsecond),
			"status", span.Status().Code.String(),
		}
		if desc := span.Status().Description; desc != "" {
			args = append(args, "status_description", desc)
		}
		for _, kv := range span.Attributes() {
			args = append(args, attrKey(kv.Key), kv.Value.Emit())
		}

		e.logger.DebugContext(ctx, "span finished", args...)
	}
	return nil
}

// Shutdown is a no-op; the exporter holds no resources.
func (e *LogSpanExporter) Shutdown(context.Context) error {
	return nil
}

func attrKey(k attribute.Key) string {
	return "attr." + string(k)
}
