// Package observable instruments event handlers with metrics, tracing and logging
// while the wrapped handler stays free of infrastructure concerns.
//
// Wrapping is applied externally at wiring time:
//
//	persist, err := observable.NewHandlerWrapper(
//		journal,
//		observable.WithHandlerName("journal"),
//		observable.WithMetrics(metricsCollector),
//		observable.WithTracing(tracingCollector),
//		observable.WithContextualLogging(contextualLogger),
//	)
//
// A wrapper is a Handler, so it can be put around a single step or around a whole chain.
// Wrapping each step of a chain is how per-step durations and failures are made visible,
// because the chain itself only reports eventhandler.ErrChainedHandlerFailed:
//
//	pipeline := eventhandler.Chain(persist, forward)
//
// The wrapper never changes the outcome of the wrapped handler: it returns exactly the error it got.
package observable
