package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/gridtoe/internal/entity"
	"github.com/rocketscienceinc/gridtoe/internal/usecase"
)

const (
	actionNewMatch  = "match:new"
	actionJoinMatch = "match:join"
	actionTurn      = "match:turn"
	actionEvent     = "match:event"
	actionError     = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	MatchID  string                 `json:"match_id,omitempty"`
	Settings *usecase.MatchSettings `json:"settings,omitempty"`
	Cell     *entity.Cell           `json:"cell,omitempty"`

	Match  *entity.Match  `json:"match,omitempty"`
	Events []entity.Event `json:"events,omitempty"`
	Event  *entity.Event  `json:"event,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func encodeMessage(action string, payload Payload) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{Action: action, Payload: raw})
}
