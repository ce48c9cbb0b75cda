package transport

import (
	"log/slog"

	"github.com/thesrcielos/ScoreBoard/internal/game/state"
)

type OutgoingMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func SendToViewer(viewerID string, msg OutgoingMessage) {
	viewer := state.GetViewer(viewerID)
	if viewer == nil {
		return
	}
	send(viewer, msg)
}

// SendToGameViewers pushes msg to every connection watching gameID.
func SendToGameViewers(gameID string, msg OutgoingMessage) {
	for _, viewer := range state.ViewersOf(gameID) {
		send(viewer, msg)
	}
}

func send(viewer *state.Viewer, msg OutgoingMessage) {
	viewer.ConnMu.Lock()
	defer viewer.ConnMu.Unlock()

	if err := viewer.Conn.WriteJSON(msg); err != nil {
		slog.Warn("ws_send_failed", slog.String("viewer_id", viewer.ID), slog.Any("error", err))
	}
}
