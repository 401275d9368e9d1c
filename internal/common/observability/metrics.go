package observability

import (
	"context"
	"time"

	"property-search/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability records search telemetry through an OpenTelemetry meter
// exported on the Prometheus default registry, and traces searches through
// an SDK tracer provider. A zero value is a no-op.
type Observability struct {
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	searchCounter  otelmetric.Int64Counter
	searchDuration otelmetric.Float64Histogram
}

// New builds the meter and tracer providers. Span processors, when given,
// receive every finished search span.
func New(serviceName string, log logger.Logger, processors ...sdktrace.SpanProcessor) *Observability {
	tracerProvider := newTracerProvider(serviceName, processors...)
	otel.SetTracerProvider(tracerProvider)
	tracer := tracerProvider.Tracer(serviceName)

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{
			"error": err,
		})
		return &Observability{tracerProvider: tracerProvider, tracer: tracer}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	searchCounter, _ := meter.Int64Counter(
		"searches.processed",
		otelmetric.WithDescription("Number of property searches processed"),
	)

	searchDuration, _ := meter.Float64Histogram(
		"searches.duration",
		otelmetric.WithDescription("Property search duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		tracerProvider: tracerProvider,
		tracer:         tracer,
		meterProvider:  provider,
		meter:          meter,
		searchCounter:  searchCounter,
		searchDuration: searchDuration,
	}
}

func (o *Observability) RecordSearch(ctx context.Context, mode, status string, cached bool) {
	if o == nil || o.searchCounter == nil {
		return
	}
	o.searchCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("status", status),
		attribute.Bool("cached", cached),
	))
}

func (o *Observability) RecordSearchDuration(ctx context.Context, duration time.Duration, mode string) {
	if o == nil || o.searchDuration == nil {
		return
	}
	o.searchDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("mode", mode),
	))
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
}
