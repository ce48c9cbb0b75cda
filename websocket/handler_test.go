package websocket

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesrcielos/ScoreBoard/internal/game"
	"github.com/thesrcielos/ScoreBoard/internal/user"
	"github.com/thesrcielos/ScoreBoard/websocket/message"
	"github.com/thesrcielos/ScoreBoard/websocket/transport"
)

func newTestServer(t *testing.T) (*httptest.Server, *user.TokenIssuer) {
	t.Helper()
	tokens := user.NewTokenIssuer("ws-secret", time.Hour, nil)
	h := NewHandler(tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))

	e := echo.New()
	e.GET("/ws", h.WebSocketHandler)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, tokens
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func readMessage(t *testing.T, conn *websocket.Conn) transport.OutgoingMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg transport.OutgoingMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketHandler_RejectsInvalidToken(t *testing.T) {
	srv, _ := newTestServer(t)

	_, resp, err := dial(t, srv, "garbage")

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketHandler_WatchAndReceiveUpdates(t *testing.T) {
	srv, tokens := newTestServer(t)
	token, err := tokens.Generate(&user.User{ID: "u1", Username: "viewer", Role: user.RolePlayer})
	require.NoError(t, err)

	conn, _, err := dial(t, srv, token)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    message.TypeWatchGame,
		"payload": map[string]string{"gameId": "g1"},
	}))
	ack := readMessage(t, conn)
	assert.Equal(t, message.TypeWatching, ack.Type)

	DeliverGameMessage(game.GameMessage{Type: game.MessageGameUpdated, GameID: "other", Payload: &game.Game{ID: "other"}})
	DeliverGameMessage(game.GameMessage{Type: game.MessageGameUpdated, GameID: "g1", Payload: &game.Game{ID: "g1", Title: "Ace Game 1"}})

	update := readMessage(t, conn)
	assert.Equal(t, game.MessageGameUpdated, update.Type)
	payload, ok := update.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "g1", payload["id"])
	assert.Equal(t, "Ace Game 1", payload["title"])
}

func TestWebSocketHandler_WatchRequiresGameID(t *testing.T) {
	srv, tokens := newTestServer(t)
	token, err := tokens.Generate(&user.User{ID: "u1"})
	require.NoError(t, err)

	conn, _, err := dial(t, srv, token)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{"type": message.TypeWatchGame, "payload": map[string]string{}}))

	msg := readMessage(t, conn)
	assert.Equal(t, message.TypeError, msg.Type)
}
