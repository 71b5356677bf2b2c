package main

import (
	"context"
	"fmt"
	"time"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler"
	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler/observable"
	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/events"
)

const (
	stepPersist  = "persist"
	stepProgress = "progress"
)

// instrumentation bundles what every pipeline step is observed with. Zero values disable a concern.
type instrumentation struct {
	metrics eventhandler.MetricsCollector
	tracing eventhandler.TracingCollector
	logger  eventhandler.ContextualLogger
}

// buildPipeline chains persist and progress, each observed under its own step name,
// so a failure shows up in the metrics of the step that caused it.
func buildPipeline(persist, progress eventhandler.Handler, inst instrumentation) (eventhandler.Handler, error) {
	observedPersist, err := observe(persist, stepPersist, inst)
	if err != nil {
		return nil, err
	}

	observedProgress, err := observe(progress, stepProgress, inst)
	if err != nil {
		return nil, err
	}

	return eventhandler.Chain(observedPersist, observedProgress), nil
}

func observe(core eventhandler.Handler, name string, inst instrumentation) (*observable.HandlerWrapper, error) {
	options := []observable.Option{observable.WithHandlerName(name)}

	if inst.metrics != nil {
		options = append(options, observable.WithMetrics(inst.metrics))
	}

	if inst.tracing != nil {
		options = append(options, observable.WithTracing(inst.tracing))
	}

	if inst.logger != nil {
		options = append(options, observable.WithContextualLogging(inst.logger))
	}

	return observable.NewHandlerWrapper(core, options...)
}

// feedBlocks hands every event of the heights from..to to the pipeline and stops at the first failure.
// Each event gets its own timeout.
func feedBlocks(
	ctx context.Context,
	pipeline eventhandler.Handler,
	from, to uint64,
	abciEventsPerBlock int,
	handleTimeout time.Duration,
) error {

	for height := from; height <= to; height++ {
		for _, event := range blockEvents(height, abciEventsPerBlock) {
			if err := handleWithTimeout(ctx, pipeline, event, handleTimeout); err != nil {
				return fmt.Errorf("handling %s at height %d: %w", event.EventType(), height, err)
			}
		}
	}

	return nil
}

func handleWithTimeout(ctx context.Context, handler eventhandler.Handler, event events.Event, timeout time.Duration) error {
	handleCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return handler.Handle(handleCtx, event)
}
