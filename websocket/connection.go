package websocket

import (
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/thesrcielos/ScoreBoard/internal/game/state"
	"github.com/thesrcielos/ScoreBoard/websocket/message"
	"github.com/thesrcielos/ScoreBoard/websocket/router"
)

func listenViewerMessages(viewerID string, conn *websocket.Conn, logger *slog.Logger) {
	defer func() {
		logger.Info("ws_disconnected", slog.String("viewer_id", viewerID))
		state.UnregisterViewer(viewerID)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws_read_failed", slog.String("viewer_id", viewerID), slog.Any("error", err))
			}
			break
		}

		var msg message.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("ws_decode_failed", slog.String("viewer_id", viewerID), slog.Any("error", err))
			continue
		}

		router.RouteMessage(viewerID, msg)
	}
}
