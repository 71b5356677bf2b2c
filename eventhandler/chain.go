package eventhandler

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/events"
)

// ErrChainedHandlerFailed is the only error kind a ChainHandler reports.
// The failure of the wrapped handler is joined to it and stays reachable with errors.Is and errors.As.
var ErrChainedHandlerFailed = errors.New("one of the chained handlers failed handling event")

// ChainHandler runs two handlers in a fixed order against the same event.
//
// The second handler is invoked if and only if the first one succeeded, and each of them
// is invoked at most once per Handle call. ChainHandler holds no state besides the two
// handlers, so concurrent Handle calls are as safe as the wrapped handlers are.
type ChainHandler struct {
	first  Handler
	second Handler
}

// NewChainHandler creates a ChainHandler that runs first and then second.
func NewChainHandler(first Handler, second Handler) ChainHandler {
	return ChainHandler{
		first:  first,
		second: second,
	}
}

// Chain is a shortcut for NewChainHandler that returns the result as a Handler,
// which reads better when nesting chains.
func Chain(first Handler, second Handler) Handler {
	return NewChainHandler(first, second)
}

// Handle invokes the first handler and waits for it. If it fails, the second handler is never invoked.
// Otherwise, the second handler is invoked with the same event.
func (h ChainHandler) Handle(ctx context.Context, event events.Event) error {
	if err := h.first.Handle(ctx, event); err != nil {
		return errors.Join(ErrChainedHandlerFailed, err)
	}

	if err := h.second.Handle(ctx, event); err != nil {
		return errors.Join(ErrChainedHandlerFailed, err)
	}

	return nil
}

var _ Handler = ChainHandler{}
