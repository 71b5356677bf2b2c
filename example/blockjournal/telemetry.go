package main

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler/oteladapters"
)

const instrumentationScope = "github.com/AntonStoeckl/dynamic-streams-eventhandlers"

// telemetry holds the OpenTelemetry providers writing to stdout.
type telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

func newStdoutTelemetry(ctx context.Context, serviceName string) (*telemetry, error) {
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)))
	if err != nil {
		return nil, err
	}

	traceExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	metricExporter, err := stdoutmetric.New()
	if err != nil {
		return nil, err
	}

	return &telemetry{
		tracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		),
		meterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(10*time.Second))),
			sdkmetric.WithResource(res),
		),
	}, nil
}

func (t *telemetry) metricsCollector() *oteladapters.MetricsCollector {
	return oteladapters.NewMetricsCollector(t.meterProvider.Meter(instrumentationScope))
}

func (t *telemetry) tracingCollector() *oteladapters.TracingCollector {
	return oteladapters.NewTracingCollector(t.tracerProvider.Tracer(instrumentationScope))
}

// shutdown flushes pending spans and metrics.
func (t *telemetry) shutdown(ctx context.Context) error {
	return errors.Join(t.tracerProvider.Shutdown(ctx), t.meterProvider.Shutdown(ctx))
}
