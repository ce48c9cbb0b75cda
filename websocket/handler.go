package websocket

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/thesrcielos/ScoreBoard/internal/common/uuid"
	"github.com/thesrcielos/ScoreBoard/internal/game"
	"github.com/thesrcielos/ScoreBoard/internal/game/state"
	"github.com/thesrcielos/ScoreBoard/internal/user"
	"github.com/thesrcielos/ScoreBoard/websocket/transport"
)

const authCookie = "auth-token"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Handler struct {
	tokens *user.TokenIssuer
	uuid   uuid.UUID
	logger *slog.Logger
}

func NewHandler(tokens *user.TokenIssuer, logger *slog.Logger) *Handler {
	return &Handler{tokens: tokens, uuid: uuid.New(), logger: logger}
}

// WebSocketHandler authenticates with ?token= or the auth cookie before
// upgrading.
func (h *Handler) WebSocketHandler(c echo.Context) error {
	tokenString := c.QueryParam("token")
	if tokenString == "" {
		if cookie, err := c.Cookie(authCookie); err == nil {
			tokenString = cookie.Value
		}
	}

	claims, err := h.tokens.Parse(tokenString)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("ws_upgrade_failed", slog.Any("error", err))
		return err
	}

	viewerID := h.uuid.NewUUID()
	state.RegisterViewer(viewerID, claims.ID, ws)
	h.logger.Info("ws_connected", slog.String("viewer_id", viewerID), slog.String("user_id", claims.ID))
	go listenViewerMessages(viewerID, ws, h.logger)

	return nil
}

// DeliverGameMessage forwards a ledger update to this instance's viewers.
func DeliverGameMessage(msg game.GameMessage) {
	transport.SendToGameViewers(msg.GameID, transport.OutgoingMessage{
		Type:    msg.Type,
		Payload: msg.Payload,
	})
}
