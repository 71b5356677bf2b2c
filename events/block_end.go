package events

import (
	jsoniter "github.com/json-iterator/go"
)

const BlockEndEventType = EventTypeString("BlockEnd")

// BlockEnd signals that the block boundary at Height was reached.
type BlockEnd struct {
	Height HeightUint
}

func BlockEndFromJSON(payloadJSON []byte) (BlockEnd, error) {
	payload := new(blockBoundaryPayload)
	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, payload); err != nil {
		return BlockEnd{}, err
	}

	return BlockEnd{Height: payload.Height}, nil
}

func (e BlockEnd) EventType() string {
	return BlockEndEventType
}

func (e BlockEnd) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(blockBoundaryPayload{Height: e.Height})
}
