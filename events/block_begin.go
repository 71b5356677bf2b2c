package events

import (
	jsoniter "github.com/json-iterator/go"
)

const BlockBeginEventType = EventTypeString("BlockBegin")

// BlockBegin signals that processing of the block at Height has started.
type BlockBegin struct {
	Height HeightUint
}

type blockBoundaryPayload struct {
	Height HeightUint `json:"height"`
}

func BlockBeginFromJSON(payloadJSON []byte) (BlockBegin, error) {
	payload := new(blockBoundaryPayload)
	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, payload); err != nil {
		return BlockBegin{}, err
	}

	return BlockBegin{Height: payload.Height}, nil
}

func (e BlockBegin) EventType() string {
	return BlockBeginEventType
}

func (e BlockBegin) PayloadToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(blockBoundaryPayload{Height: e.Height})
}
