// Package oteladapters implements the observability interfaces of the eventhandler package
// on top of OpenTelemetry, for plug-and-play instrumentation of handlers and chains:
//
//   - MetricsCollector: histograms, counters and gauges from a metric.Meter
//   - TracingCollector: spans from a trace.Tracer
//   - SlogBridgeLogger: log/slog with trace correlation through the otelslog bridge
//   - OTelLogger: the OpenTelemetry log API used directly
//
// Typical wiring:
//
//	metrics := oteladapters.NewMetricsCollector(meterProvider.Meter("eventhandler"))
//	tracing := oteladapters.NewTracingCollector(tracerProvider.Tracer("eventhandler"))
//	logger := oteladapters.NewSlogBridgeLogger("eventhandler")
//
//	journal, _ := observable.NewHandlerWrapper(
//		core,
//		observable.WithMetrics(metrics),
//		observable.WithTracing(tracing),
//		observable.WithContextualLogging(logger),
//	)
package oteladapters
