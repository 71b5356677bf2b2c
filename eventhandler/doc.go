// Package eventhandler provides the handler capability for reacting to events
// and the combinator that chains two handlers into one.
//
// A Handler reacts to a single events.Event and reports success or failure.
// Leaf handlers carry the actual side effects (persisting, forwarding, metrics),
// while a ChainHandler presents two handlers as one:
//
//   - the first handler is called and awaited
//   - only if it succeeded, the second handler is called with the same event
//   - any failure is returned as ErrChainedHandlerFailed, joined with the cause
//
// Because a ChainHandler is itself a Handler, longer pipelines are built by nesting:
//
//	pipeline := eventhandler.Chain(
//		eventhandler.Chain(persist, publishMetrics),
//		forward,
//	)
//
//	if err := pipeline.Handle(ctx, events.BlockEnd{Height: 10}); err != nil {
//		if errors.Is(err, eventhandler.ErrChainedHandlerFailed) {
//			// one of the steps failed, the cause is still reachable with errors.Is/As
//		}
//	}
//
// The chain is strictly sequential and fail-fast. Side effects of a step that already
// succeeded are not undone when a later step fails, and there is no retry at this level.
//
// The observability interfaces in this package (Logger, ContextualLogger, MetricsCollector,
// TracingCollector) are dependency-free, so handlers can be instrumented with any backend.
// See the observable and oteladapters packages.
package eventhandler
