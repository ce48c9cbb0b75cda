package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	api_middleware "github.com/thesrcielos/ScoreBoard/api/middleware"
	"github.com/thesrcielos/ScoreBoard/internal/player"
)

type PlayerHandler struct {
	players *player.PlayerService
}

func NewPlayerHandler(players *player.PlayerService) *PlayerHandler {
	return &PlayerHandler{players: players}
}

func (h *PlayerHandler) RegisterPlayerRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("", h.ListPlayers)
	g.GET("/leaderboard", h.Leaderboard)
	g.POST("", h.CreatePlayer, auth, api_middleware.RequireAdmin)
	g.PUT("", h.ReplacePlayers, auth, api_middleware.RequireAdmin)
}

func (h *PlayerHandler) ListPlayers(c echo.Context) error {
	players, err := h.players.ListPlayers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "players": players})
}

func (h *PlayerHandler) Leaderboard(c echo.Context) error {
	players, err := h.players.Leaderboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "players": players})
}

func (h *PlayerHandler) CreatePlayer(c echo.Context) error {
	var req player.CreatePlayerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	p, err := h.players.CreatePlayer(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "player": p})
}

func (h *PlayerHandler) ReplacePlayers(c echo.Context) error {
	var players []player.Player
	if err := c.Bind(&players); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	if err := h.players.ReplaceAllPlayers(c.Request().Context(), players); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
