package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler"
	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/events"
)

// HandlerSpy is a Handler that records the events it was invoked with.
type HandlerSpy struct {
	name    string
	callLog *CallLog
	result  func(ctx context.Context, event events.Event) error
	calls   []events.Event
	mu      sync.Mutex
}

// NewHandlerSpy creates a spy that succeeds for every event.
// The callLog is optional and may be shared between spies to observe the invocation order.
func NewHandlerSpy(name string, callLog *CallLog) *HandlerSpy {
	return &HandlerSpy{
		name:    name,
		callLog: callLog,
		calls:   make([]events.Event, 0),
	}
}

// NewFailingHandlerSpy creates a spy that fails every event with err.
func NewFailingHandlerSpy(name string, callLog *CallLog, err error) *HandlerSpy {
	spy := NewHandlerSpy(name, callLog)
	spy.result = func(context.Context, events.Event) error {
		return err
	}

	return spy
}

// NewHandlerSpyFunc creates a spy whose outcome is decided per event by result.
func NewHandlerSpyFunc(
	name string,
	callLog *CallLog,
	result func(ctx context.Context, event events.Event) error,
) *HandlerSpy {

	spy := NewHandlerSpy(name, callLog)
	spy.result = result

	return spy
}

// Handle implements eventhandler.Handler.
func (s *HandlerSpy) Handle(ctx context.Context, event events.Event) error {
	s.callLog.record(Started(s.name))
	defer s.callLog.record(Finished(s.name))

	s.mu.Lock()
	s.calls = append(s.calls, event)
	s.mu.Unlock()

	if s.result == nil {
		return nil
	}

	return s.result(ctx, event)
}

// Name returns the name the spy records in the CallLog.
func (s *HandlerSpy) Name() string {
	return s.name
}

// GetCalls returns a copy of all events the spy was invoked with.
func (s *HandlerSpy) GetCalls() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]events.Event(nil), s.calls...)
}

// CallCount returns how often the spy was invoked.
func (s *HandlerSpy) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

var _ eventhandler.Handler = (*HandlerSpy)(nil)
