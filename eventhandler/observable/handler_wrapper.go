package observable

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler"
	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/events"
)

const defaultHandlerName = "handler"

var (
	// ErrNilHandler is returned when no handler is supplied to NewHandlerWrapper.
	ErrNilHandler = errors.New("handler must not be nil")

	// ErrEmptyHandlerName is returned when an empty name is supplied to WithHandlerName.
	ErrEmptyHandlerName = errors.New("handler name must not be empty")
)

// HandlerWrapper instruments any eventhandler.Handler with metrics, tracing and logging.
type HandlerWrapper struct {
	coreHandler      eventhandler.Handler
	handlerName      string
	metricsCollector eventhandler.MetricsCollector
	tracingCollector eventhandler.TracingCollector
	contextualLogger eventhandler.ContextualLogger
	logger           eventhandler.Logger
}

// Option defines a functional option for configuring HandlerWrapper.
type Option func(*HandlerWrapper) error

// NewHandlerWrapper creates an observable wrapper around coreHandler.
func NewHandlerWrapper(coreHandler eventhandler.Handler, opts ...Option) (*HandlerWrapper, error) {
	if coreHandler == nil {
		return nil, ErrNilHandler
	}

	wrapper := &HandlerWrapper{
		coreHandler: coreHandler,
		handlerName: defaultHandlerName,
	}

	for _, opt := range opts {
		if err := opt(wrapper); err != nil {
			return nil, err
		}
	}

	return wrapper, nil
}

// Handle delegates to the wrapped handler and records the outcome.
// The returned error is the one of the wrapped handler, unchanged.
func (w *HandlerWrapper) Handle(ctx context.Context, event events.Event) error {
	eventType := event.EventType()

	start := time.Now()
	ctx, span := startHandlerSpan(ctx, w.tracingCollector, w.handlerName, eventType)
	logHandlerStart(ctx, w.logger, w.contextualLogger, w.handlerName, eventType)

	err := w.coreHandler.Handle(ctx, event)

	duration := time.Since(start)
	status := StatusFromError(err)

	recordHandlerMetrics(ctx, w.metricsCollector, w.handlerName, eventType, status, duration)
	finishHandlerSpan(w.tracingCollector, span, status, duration, err)

	if err != nil {
		logHandlerError(ctx, w.logger, w.contextualLogger, w.handlerName, eventType, status, err)
		return err
	}

	logHandlerSuccess(ctx, w.logger, w.contextualLogger, w.handlerName, eventType, duration)

	return nil
}

// HandlerName returns the name used in logs, metric labels and span attributes.
func (w *HandlerWrapper) HandlerName() string {
	return w.handlerName
}

// WithHandlerName sets the name under which the handler is reported.
func WithHandlerName(name string) Option {
	return func(w *HandlerWrapper) error {
		if name == "" {
			return ErrEmptyHandlerName
		}

		w.handlerName = name

		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector eventhandler.MetricsCollector) Option {
	return func(w *HandlerWrapper) error {
		w.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector.
func WithTracing(collector eventhandler.TracingCollector) Option {
	return func(w *HandlerWrapper) error {
		w.tracingCollector = collector
		return nil
	}
}

// WithContextualLogging sets the contextual logger. It takes precedence over WithLogging.
func WithContextualLogging(logger eventhandler.ContextualLogger) Option {
	return func(w *HandlerWrapper) error {
		w.contextualLogger = logger
		return nil
	}
}

// WithLogging sets the basic logger.
func WithLogging(logger eventhandler.Logger) Option {
	return func(w *HandlerWrapper) error {
		w.logger = logger
		return nil
	}
}

var _ eventhandler.Handler = (*HandlerWrapper)(nil)
