package events

import (
	"errors"
	"strings"
)

type EventTypeString = string
type Events = []Event

// HeightUint is the position marker of a block within the chain.
type HeightUint = uint64

var ErrUnknownEventType = errors.New("unknown event type")
var ErrUnmarshallingEventFailed = errors.New("unmarshalling event from json failed")

// Event is an immutable occurrence that handlers react to.
//
// Implementations are value types, so a handler always works on its own copy and can never
// change what the dispatcher or the next handler in a chain sees.
type Event interface {
	EventType() string
	PayloadToJSON() ([]byte, error)
}

// EventFromJSON rebuilds an Event from its type and JSON payload, e.g. when reading a journal back.
func EventFromJSON(eventType EventTypeString, payload []byte) (Event, error) {
	switch eventType {
	case BlockBeginEventType:
		event, unmarshallingErr := BlockBeginFromJSON(payload)
		if unmarshallingErr != nil {
			return nil, errors.Join(ErrUnmarshallingEventFailed, unmarshallingErr)
		}

		return event, nil

	case BlockEndEventType:
		event, unmarshallingErr := BlockEndFromJSON(payload)
		if unmarshallingErr != nil {
			return nil, errors.Join(ErrUnmarshallingEventFailed, unmarshallingErr)
		}

		return event, nil

	default:
		if strings.HasPrefix(eventType, ABCIEventTypePrefix) {
			event, unmarshallingErr := ABCIEventFromJSON(payload)
			if unmarshallingErr != nil {
				return nil, errors.Join(ErrUnmarshallingEventFailed, unmarshallingErr)
			}

			return event, nil
		}
	}

	return nil, ErrUnknownEventType
}
