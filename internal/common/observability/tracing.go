package observability

import (
	"context"
	"fmt"
	"io"

	"property-search/internal/common/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NewSpanProcessors builds the span processors for the configured exporter.
// "none" records spans without exporting them.
func NewSpanProcessors(cfg config.TracingConfig, w io.Writer) ([]sdktrace.SpanProcessor, error) {
	switch cfg.Exporter {
	case config.TracingExporterNone, "":
		return nil, nil
	case config.TracingExporterStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
		return []sdktrace.SpanProcessor{sdktrace.NewBatchSpanProcessor(exporter)}, nil
	default:
		return nil, fmt.Errorf("unsupported tracing exporter %q", cfg.Exporter)
	}
}

func newTracerProvider(serviceName string, processors ...sdktrace.SpanProcessor) *sdktrace.TracerProvider {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	return sdktrace.NewTracerProvider(opts...)
}

// StartSpan opens a span under ctx. Without a tracer it returns a
// non-recording span, so callers always End it.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, noop.Span{}
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// FailSpan marks span as failed with err.
func FailSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
