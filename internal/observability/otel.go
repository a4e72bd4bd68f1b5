package observability

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Options selects what SetupOTel exports.
type Options struct {
	Endpoint       string
	ServiceName    string
	DisableMetrics bool
	DisableTraces  bool
	ExportInterval time.Duration
}

// SetupOTel initializes OpenTelemetry providers.
// Metrics are exported unless disabled; instruments still work without an
// exporter. Traces are optional.
func SetupOTel(ctx context.Context, opts Options) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(opts.ServiceName)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "otel resource")
	}

	interval := opts.ExportInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	mpOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if !opts.DisableMetrics {
		// Metrics exporter (OTLP HTTP → Collector).
		metricExp, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(opts.Endpoint))
		if err != nil {
			return nil, errors.Wrap(err, "otlp metric exporter")
		}
		mpOpts = append(mpOpts,
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(interval))))
	}
	mp := sdkmetric.NewMeterProvider(mpOpts...)
	otel.SetMeterProvider(mp)

	// Traces exporter (optional).
	var tp *sdktrace.TracerProvider
	if !opts.DisableTraces {
		traceExp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(opts.Endpoint))
		if err != nil {
			return nil, errors.Wrap(err, "otlp trace exporter")
		}
		tp = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(traceExp),
		)
		otel.SetTracerProvider(tp)
	}

	// Runtime metrics (goroutines, heap, GC, etc.).
	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(2 * time.Second)); err != nil {
		return nil, errors.Wrap(err, "runtime metrics")
	}

	return func(ctx context.Context) error {
		var firstErr error
		if err := mp.Shutdown(ctx); err != nil {
			firstErr = errors.Wrap(err, "meter provider shutdown")
		}
		if tp != nil {
			if err := tp.Shutdown(ctx); err != nil && firstErr == nil {
				firstErr = errors.Wrap(err, "tracer provider shutdown")
			}
		}
		return firstErr
	}, nil
}
