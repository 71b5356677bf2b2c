package observable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler"
	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler/observable"
	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/events"
	. "github.com/AntonStoeckl/dynamic-streams-eventhandlers/testutil/testdoubles" //nolint:revive
)

var errUnknown = errors.New("unknown")

func Test_NewHandlerWrapper_RejectsNilHandler(t *testing.T) {
	wrapper, err := observable.NewHandlerWrapper(nil)

	assert.ErrorIs(t, err, observable.ErrNilHandler)
	assert.Nil(t, wrapper)
}

func Test_NewHandlerWrapper_RejectsEmptyHandlerName(t *testing.T) {
	wrapper, err := observable.NewHandlerWrapper(NewHandlerSpy("core", nil), observable.WithHandlerName(""))

	assert.ErrorIs(t, err, observable.ErrEmptyHandlerName)
	assert.Nil(t, wrapper)
}

func Test_NewHandlerWrapper_DefaultsTheHandlerName(t *testing.T) {
	wrapper, err := observable.NewHandlerWrapper(NewHandlerSpy("core", nil))

	require.NoError(t, err)
	assert.Equal(t, "handler", wrapper.HandlerName())
}

func Test_HandlerWrapper_Handle_Success(t *testing.T) {
	// arrange
	core := NewHandlerSpy("core", nil)
	metricsCollector := NewMetricsCollectorSpy()
	tracingCollector := NewTracingCollectorSpy()
	logger := NewLoggerSpy()

	wrapper, err := observable.NewHandlerWrapper(
		core,
		observable.WithHandlerName("journal"),
		observable.WithMetrics(metricsCollector),
		observable.WithTracing(tracingCollector),
		observable.WithContextualLogging(logger),
	)
	require.NoError(t, err)

	event := events.BlockEnd{Height: 10}

	// act
	err = wrapper.Handle(context.Background(), event)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []events.Event{event}, core.GetCalls(), "should delegate to the core handler exactly once")

	assert.True(t, metricsCollector.HasCounterRecordForMetric(observable.HandlerCallsMetric).
		WithLabel("handler", "journal").
		WithLabel("event_type", events.BlockEndEventType).
		WithStatus(observable.StatusSuccess).
		Assert(), "should record the call")
	assert.True(t, metricsCollector.HasDurationRecordForMetric(observable.HandlerDurationMetric).
		WithStatus(observable.StatusSuccess).
		Assert(), "should record the duration")
	assert.Equal(t, 2, metricsCollector.ContextualUses(), "should prefer the context-aware methods")

	spans := tracingCollector.GetSpanRecords()
	require.Len(t, spans, 1)
	assert.Equal(t, observable.SpanNameHandle, spans[0].Name)
	assert.Equal(t, "journal", spans[0].StartAttributes["handler"])
	assert.True(t, spans[0].Finished)
	assert.Equal(t, observable.StatusSuccess, spans[0].Status)

	assert.True(t, logger.HasLog("debug", observable.LogMsgHandlerStarted))
	assert.True(t, logger.HasInfoLog(observable.LogMsgHandlerCompleted))
	assert.False(t, logger.HasErrorLog(observable.LogMsgHandlerFailed))
}

func Test_HandlerWrapper_Handle_ReturnsTheCoreErrorUnchanged(t *testing.T) {
	// arrange
	metricsCollector := NewMetricsCollectorSpy()
	tracingCollector := NewTracingCollectorSpy()
	logger := NewLoggerSpy()

	wrapper, err := observable.NewHandlerWrapper(
		NewFailingHandlerSpy("core", nil, errUnknown),
		observable.WithHandlerName("forwarder"),
		observable.WithMetrics(metricsCollector),
		observable.WithTracing(tracingCollector),
		observable.WithLogging(logger),
	)
	require.NoError(t, err)

	// act
	err = wrapper.Handle(context.Background(), events.BlockEnd{Height: 10})

	// assert
	assert.Same(t, errUnknown, err)
	assert.True(t, metricsCollector.HasCounterRecordForMetric(observable.HandlerCallsMetric).
		WithLabel("handler", "forwarder").
		WithStatus(observable.StatusError).
		Assert())

	spans := tracingCollector.GetSpanRecords()
	require.Len(t, spans, 1)
	assert.Equal(t, observable.StatusError, spans[0].Status)
	assert.Equal(t, "unknown", spans[0].EndAttributes["error"])

	assert.True(t, logger.HasErrorLog(observable.LogMsgHandlerFailed))
	errorAttr, found := logger.ArgValue(observable.LogMsgHandlerFailed, "error")
	assert.True(t, found)
	assert.Equal(t, "unknown", errorAttr)
}

func Test_HandlerWrapper_Handle_ClassifiesCancellationAndTimeout(t *testing.T) {
	testCases := []struct {
		name           string
		coreErr        error
		expectedStatus string
		expectedMetric string
	}{
		{
			name:           "canceled",
			coreErr:        errors.Join(errors.New("query aborted"), context.Canceled),
			expectedStatus: observable.StatusCanceled,
			expectedMetric: observable.HandlerCanceledMetric,
		},
		{
			name:           "timeout",
			coreErr:        context.DeadlineExceeded,
			expectedStatus: observable.StatusTimeout,
			expectedMetric: observable.HandlerTimeoutMetric,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			metricsCollector := NewMetricsCollectorSpy()
			wrapper, err := observable.NewHandlerWrapper(
				NewFailingHandlerSpy("core", nil, tc.coreErr),
				observable.WithMetrics(metricsCollector),
			)
			require.NoError(t, err)

			// act
			err = wrapper.Handle(context.Background(), events.BlockBegin{Height: 1})

			// assert
			assert.ErrorIs(t, err, tc.coreErr)
			assert.Equal(t, 1, metricsCollector.CountCounterRecordsForMetric(tc.expectedMetric))
			assert.True(t, metricsCollector.HasCounterRecordForMetric(observable.HandlerCallsMetric).
				WithStatus(tc.expectedStatus).
				Assert())
		})
	}
}

func Test_HandlerWrapper_Handle_WithoutObservabilityOnlyDelegates(t *testing.T) {
	// arrange
	core := NewHandlerSpy("core", nil)
	wrapper, err := observable.NewHandlerWrapper(core)
	require.NoError(t, err)

	// act
	err = wrapper.Handle(context.Background(), events.BlockEnd{Height: 10})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, core.CallCount())
}

func Test_HandlerWrapper_WrappedStepsOfAChainReportPerStepOutcome(t *testing.T) {
	// arrange
	metricsCollector := NewMetricsCollectorSpy()

	persist, err := observable.NewHandlerWrapper(
		NewHandlerSpy("persist", nil),
		observable.WithHandlerName("persist"),
		observable.WithMetrics(metricsCollector),
	)
	require.NoError(t, err)

	forward, err := observable.NewHandlerWrapper(
		NewFailingHandlerSpy("forward", nil, errUnknown),
		observable.WithHandlerName("forward"),
		observable.WithMetrics(metricsCollector),
	)
	require.NoError(t, err)

	// act
	err = eventhandler.Chain(persist, forward).Handle(context.Background(), events.BlockEnd{Height: 10})

	// assert
	assert.ErrorIs(t, err, eventhandler.ErrChainedHandlerFailed)
	assert.True(t, metricsCollector.HasCounterRecordForMetric(observable.HandlerCallsMetric).
		WithLabel("handler", "persist").
		WithStatus(observable.StatusSuccess).
		Assert())

	var forwardFailed bool
	for _, record := range metricsCollector.GetRecords() {
		if record.Metric == observable.HandlerCallsMetric && record.Labels["handler"] == "forward" {
			forwardFailed = record.Labels["status"] == observable.StatusError
		}
	}
	assert.True(t, forwardFailed, "the failing step should be visible by its handler label")
}

func Test_StatusFromError(t *testing.T) {
	assert.Equal(t, observable.StatusSuccess, observable.StatusFromError(nil))
	assert.Equal(t, observable.StatusError, observable.StatusFromError(errUnknown))
	assert.Equal(t, observable.StatusCanceled, observable.StatusFromError(context.Canceled))
	assert.Equal(t, observable.StatusTimeout, observable.StatusFromError(context.DeadlineExceeded))
}
