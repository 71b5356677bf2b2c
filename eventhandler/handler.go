package eventhandler

import (
	"context"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/events"
)

// Handler reacts to one event at a time.
//
// Handle blocks until the reaction is complete and returns nil on success.
// Implementations must honor ctx cancellation for any blocking work they do.
type Handler interface {
	Handle(ctx context.Context, event events.Event) error
}

// HandlerFunc lets an ordinary function act as a Handler.
type HandlerFunc func(ctx context.Context, event events.Event) error

// Handle calls fn(ctx, event).
func (fn HandlerFunc) Handle(ctx context.Context, event events.Event) error {
	return fn(ctx, event)
}

// Chain returns a Handler that runs fn first and next only if fn succeeded.
func (fn HandlerFunc) Chain(next Handler) Handler {
	return NewChainHandler(fn, next)
}

var _ Handler = HandlerFunc(nil)
