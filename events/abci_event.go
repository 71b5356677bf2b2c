package events

import (
	jsoniter "github.com/json-iterator/go"
)

// ABCIEventTypePrefix prefixes the event type of every ABCIEvent, followed by the ABCI type.
const ABCIEventTypePrefix = "ABCI:"

// ABCIEvent is an application event emitted while a block was executed.
//
// The attributes are copied in and out, so an ABCIEvent can be passed around freely without
// anybody being able to change it.
type ABCIEvent struct {
	abciType   string
	attributes map[string]string
}

type abciEventPayload struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

func BuildABCIEvent(abciType string, attributes map[string]string) ABCIEvent {
	return ABCIEvent{
		abciType:   abciType,
		attributes: copyAttributes(attributes),
	}
}

func ABCIEventFromJSON(payloadJSON []byte) (ABCIEvent, error) {
	payload := new(abciEventPayload)
	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, payload); err != nil {
		return ABCIEvent{}, err
	}

	return BuildABCIEvent(payload.Type, payload.Attributes), nil
}

func (e ABCIEvent) EventType() string {
	return ABCIEventTypePrefix + e.abciType
}

func (e ABCIEvent) ABCIType() string {
	return e.abciType
}

// Attribute returns the value for key and whether it was present.
func (e ABCIEvent) Attribute(key string) (string, bool) {
	value, ok := e.attributes[key]
	return value, ok
}

func (e ABCIEvent) Attributes() map[string]string {
	return copyAttributes(e.attributes)
}

func (e ABCIEvent) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(abciEventPayload{
		Type:       e.abciType,
		Attributes: e.attributes,
	})
}

func copyAttributes(attributes map[string]string) map[string]string {
	copied := make(map[string]string, len(attributes))
	for key, value := range attributes {
		copied[key] = value
	}

	return copied
}
