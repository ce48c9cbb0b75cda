package actions

import (
	"github.com/goccy/go-json"

	"github.com/thesrcielos/ScoreBoard/internal/game/state"
	"github.com/thesrcielos/ScoreBoard/websocket/message"
)

func HandleUnwatchGame(viewerID string, msg message.Message) {
	var payload message.WatchGamePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return
	}
	state.Unwatch(viewerID, payload.GameID)
}
