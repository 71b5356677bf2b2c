package main

import (
	"context"
	"sync/atomic"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler"
	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/events"
)

const (
	logMsgBlockCompleted = "block completed"
	logAttrHeight        = "height"
	logAttrABCIEvents    = "abci_events"
)

// progressLogger logs one line per completed block with the number of ABCI events it carried.
type progressLogger struct {
	logger     eventhandler.ContextualLogger
	abciEvents atomic.Int64
	lastHeight atomic.Uint64
}

func newProgressLogger(logger eventhandler.ContextualLogger) *progressLogger {
	return &progressLogger{logger: logger}
}

func (p *progressLogger) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.BlockBegin:
		p.abciEvents.Store(0)

	case events.ABCIEvent:
		p.abciEvents.Add(1)

	case events.BlockEnd:
		p.lastHeight.Store(e.Height)
		p.logger.InfoContext(ctx, logMsgBlockCompleted, logAttrHeight, e.Height, logAttrABCIEvents, p.abciEvents.Load())
	}

	return ctx.Err()
}

// LastHeight returns the height of the last completed block.
func (p *progressLogger) LastHeight() uint64 {
	return p.lastHeight.Load()
}

var _ eventhandler.Handler = (*progressLogger)(nil)
