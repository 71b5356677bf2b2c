package main

import (
	"strconv"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/events"
)

// blockEvents returns the synthetic events of one block: BlockBegin, abciEventCount transfers, BlockEnd.
func blockEvents(height uint64, abciEventCount int) events.Events {
	framed := make(events.Events, 0, abciEventCount+2)
	framed = append(framed, events.BlockBegin{Height: height})

	for i := 0; i < abciEventCount; i++ {
		framed = append(framed, events.BuildABCIEvent("transfer", map[string]string{
			"height": strconv.FormatUint(height, 10),
			"index":  strconv.Itoa(i),
		}))
	}

	return append(framed, events.BlockEnd{Height: height})
}
