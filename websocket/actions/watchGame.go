package actions

import (
	"log/slog"

	"github.com/goccy/go-json"

	"github.com/thesrcielos/ScoreBoard/internal/game/state"
	"github.com/thesrcielos/ScoreBoard/websocket/message"
	"github.com/thesrcielos/ScoreBoard/websocket/transport"
)

func HandleWatchGame(viewerID string, msg message.Message) {
	var payload message.WatchGamePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.GameID == "" {
		slog.Warn("ws_bad_payload", slog.String("viewer_id", viewerID), slog.String("type", msg.Type))
		transport.SendToViewer(viewerID, transport.OutgoingMessage{
			Type:    message.TypeError,
			Payload: message.ErrorPayload{Message: "gameId is required"},
		})
		return
	}

	if !state.Watch(viewerID, payload.GameID) {
		return
	}
	transport.SendToViewer(viewerID, transport.OutgoingMessage{
		Type:    message.TypeWatching,
		Payload: payload,
	})
}
