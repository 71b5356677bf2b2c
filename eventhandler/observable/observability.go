package observable

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler"
)

const (
	// HandlerDurationMetric tracks handler execution duration (OpenTelemetry-compatible).
	HandlerDurationMetric = "eventhandler_handle_duration_seconds"

	// HandlerCallsMetric tracks total handler calls.
	HandlerCallsMetric = "eventhandler_handle_calls_total"

	// HandlerCanceledMetric tracks handler calls aborted by context cancellation.
	HandlerCanceledMetric = "eventhandler_canceled_operations_total"

	// HandlerTimeoutMetric tracks handler calls aborted by a context deadline.
	HandlerTimeoutMetric = "eventhandler_timeout_operations_total"

	// StatusSuccess indicates the handler succeeded.
	StatusSuccess = "success"

	// StatusError indicates the handler failed.
	StatusError = "error"

	// StatusCanceled indicates the handler failed due to context cancellation.
	StatusCanceled = "canceled"

	// StatusTimeout indicates the handler failed due to context deadline exceeded.
	StatusTimeout = "timeout"

	// LogMsgHandlerStarted is logged when event handling begins.
	LogMsgHandlerStarted = "event handler started"

	// LogMsgHandlerCompleted is logged when event handling succeeds.
	LogMsgHandlerCompleted = "event handler completed"

	// LogMsgHandlerFailed is logged when event handling fails.
	LogMsgHandlerFailed = "event handler failed"

	// LogAttrHandler identifies the handler in logs, metrics and spans.
	LogAttrHandler = "handler"

	// LogAttrEventType identifies the handled event type.
	LogAttrEventType = "event_type"

	// LogAttrStatus indicates the outcome.
	LogAttrStatus = "status"

	// LogAttrDurationMS indicates the processing duration in milliseconds.
	LogAttrDurationMS = "duration_ms"

	// LogAttrError contains error details.
	LogAttrError = "error"

	// SpanNameHandle is the tracing span name for event handling.
	SpanNameHandle = "eventhandler.handle"
)

// BuildHandlerLabels creates the metric labels for one handler invocation.
func BuildHandlerLabels(handlerName, eventType, status string) map[string]string {
	return map[string]string{
		LogAttrHandler:   handlerName,
		LogAttrEventType: eventType,
		LogAttrStatus:    status,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// StatusFromError classifies a handler outcome.
func StatusFromError(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	default:
		return StatusError
	}
}

func recordHandlerMetrics(
	ctx context.Context,
	collector eventhandler.MetricsCollector,
	handlerName string,
	eventType string,
	status string,
	duration time.Duration,
) {

	if collector == nil {
		return
	}

	labels := BuildHandlerLabels(handlerName, eventType, status)

	var statusMetric string
	switch status {
	case StatusCanceled:
		statusMetric = HandlerCanceledMetric
	case StatusTimeout:
		statusMetric = HandlerTimeoutMetric
	}

	if contextualCollector, ok := collector.(eventhandler.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, HandlerDurationMetric, duration, labels)
		contextualCollector.IncrementCounterContext(ctx, HandlerCallsMetric, labels)
		if statusMetric != "" {
			contextualCollector.IncrementCounterContext(ctx, statusMetric, labels)
		}

		return
	}

	collector.RecordDuration(HandlerDurationMetric, duration, labels)
	collector.IncrementCounter(HandlerCallsMetric, labels)
	if statusMetric != "" {
		collector.IncrementCounter(statusMetric, labels)
	}
}

func startHandlerSpan(
	ctx context.Context,
	tracingCollector eventhandler.TracingCollector,
	handlerName string,
	eventType string,
) (context.Context, eventhandler.SpanContext) {

	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, SpanNameHandle, map[string]string{
		LogAttrHandler:   handlerName,
		LogAttrEventType: eventType,
	})
}

func finishHandlerSpan(
	tracingCollector eventhandler.TracingCollector,
	span eventhandler.SpanContext,
	status string,
	duration time.Duration,
	err error,
) {

	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

func logHandlerStart(
	ctx context.Context,
	logger eventhandler.Logger,
	contextualLogger eventhandler.ContextualLogger,
	handlerName string,
	eventType string,
) {

	if contextualLogger != nil {
		contextualLogger.DebugContext(ctx, LogMsgHandlerStarted, LogAttrHandler, handlerName, LogAttrEventType, eventType)
	} else if logger != nil {
		logger.Debug(LogMsgHandlerStarted, LogAttrHandler, handlerName, LogAttrEventType, eventType)
	}
}

func logHandlerSuccess(
	ctx context.Context,
	logger eventhandler.Logger,
	contextualLogger eventhandler.ContextualLogger,
	handlerName string,
	eventType string,
	duration time.Duration,
) {

	args := []any{
		LogAttrHandler, handlerName,
		LogAttrEventType, eventType,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgHandlerCompleted, args...)
	} else if logger != nil {
		logger.Info(LogMsgHandlerCompleted, args...)
	}
}

func logHandlerError(
	ctx context.Context,
	logger eventhandler.Logger,
	contextualLogger eventhandler.ContextualLogger,
	handlerName string,
	eventType string,
	status string,
	err error,
) {

	args := []any{
		LogAttrHandler, handlerName,
		LogAttrEventType, eventType,
		LogAttrStatus, status,
		LogAttrError, err.Error(),
	}

	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, LogMsgHandlerFailed, args...)
	} else if logger != nil {
		logger.Error(LogMsgHandlerFailed, args...)
	}
}
