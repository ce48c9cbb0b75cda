package router

import (
	"log/slog"

	"github.com/thesrcielos/ScoreBoard/websocket/actions"
	"github.com/thesrcielos/ScoreBoard/websocket/message"
)

var handlers = map[string]func(viewerID string, msg message.Message){
	message.TypeWatchGame:   actions.HandleWatchGame,
	message.TypeUnwatchGame: actions.HandleUnwatchGame,
}

func RouteMessage(viewerID string, msg message.Message) {
	if handler, ok := handlers[msg.Type]; ok {
		handler(viewerID, msg)
	} else {
		slog.Warn("ws_unknown_message", slog.String("viewer_id", viewerID), slog.String("type", msg.Type))
	}
}
