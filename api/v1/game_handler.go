package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	api_middleware "github.com/thesrcielos/ScoreBoard/api/middleware"
	"github.com/thesrcielos/ScoreBoard/internal/game"
)

const recentGamesLimit = 10

type GameHandler struct {
	ledger *game.LedgerService
}

func NewGameHandler(ledger *game.LedgerService) *GameHandler {
	return &GameHandler{ledger: ledger}
}

func (h *GameHandler) RegisterGameRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("", h.ListGames)
	g.GET("/recent", h.RecentGames)
	g.GET("/leaderboard/:variant", h.VariantLeaderboard)
	g.GET("/:id", h.GetGame)
	g.GET("/:id/ace-winners", h.SuggestAceWinners)

	admin := []echo.MiddlewareFunc{auth, api_middleware.RequireAdmin}
	g.POST("", h.CreateGame, admin...)
	g.PUT("", h.ImportGames, admin...)
	g.POST("/:id/rounds", h.AddRound, admin...)
	g.POST("/:id/players", h.AddPlayer, admin...)
	g.POST("/:id/ace", h.MarkAce, admin...)
	g.POST("/:id/winner", h.DeclareWinner, admin...)
	g.POST("/:id/winners", h.DeclareWinners, admin...)
}

func (h *GameHandler) ListGames(c echo.Context) error {
	var filter game.GameFilter
	if v := c.QueryParam("variant"); v != "" {
		variant, err := game.ParseVariant(v)
		if err != nil {
			return err
		}
		filter.Variant = variant
	}
	switch status := game.Status(c.QueryParam("status")); status {
	case "":
	case game.StatusInProgress, game.StatusCompleted:
		filter.Status = status
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "status must be in_progress or completed")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "games": h.ledger.ListGames(filter)})
}

func (h *GameHandler) RecentGames(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "games": h.ledger.RecentGames(recentGamesLimit)})
}

func (h *GameHandler) VariantLeaderboard(c echo.Context) error {
	variant, err := game.ParseVariant(c.Param("variant"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"players": h.ledger.VariantLeaderboard(variant, game.LeaderboardSize),
	})
}

func (h *GameHandler) GetGame(c echo.Context) error {
	g, ok := h.ledger.GetGame(c.Param("id"))
	if !ok {
		return game.ErrGameNotFound
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "game": g})
}

func (h *GameHandler) SuggestAceWinners(c echo.Context) error {
	ids, err := h.ledger.SuggestAceWinners(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "winnerIds": ids})
}

func (h *GameHandler) CreateGame(c echo.Context) error {
	var req game.CreateGameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	g, err := h.ledger.CreateGame(c.Request().Context(), req)
	return respondGame(c, http.StatusCreated, g, err)
}

func (h *GameHandler) ImportGames(c echo.Context) error {
	var games []game.Game
	if err := c.Bind(&games); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	if err := h.ledger.ImportGames(c.Request().Context(), games); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *GameHandler) AddRound(c echo.Context) error {
	var req game.AddRoundRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	g, err := h.ledger.AddRound(c.Request().Context(), c.Param("id"), req.Scores)
	return respondGame(c, http.StatusOK, g, err)
}

func (h *GameHandler) AddPlayer(c echo.Context) error {
	var req game.AddPlayerRequest
	if err := c.Bind(&req); err != nil || req.PlayerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "playerId is required")
	}
	g, err := h.ledger.AddPlayerToGame(c.Request().Context(), c.Param("id"), req.PlayerID)
	return respondGame(c, http.StatusOK, g, err)
}

func (h *GameHandler) MarkAce(c echo.Context) error {
	var req game.MarkAceRequest
	if err := c.Bind(&req); err != nil || req.PlayerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "playerId is required")
	}
	g, err := h.ledger.MarkAce(c.Request().Context(), c.Param("id"), req.PlayerID)
	return respondGame(c, http.StatusOK, g, err)
}

func (h *GameHandler) DeclareWinner(c echo.Context) error {
	var req game.DeclareWinnerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	g, err := h.ledger.DeclareWinner(c.Request().Context(), c.Param("id"), req.WinnerID)
	return respondGame(c, http.StatusOK, g, err)
}

func (h *GameHandler) DeclareWinners(c echo.Context) error {
	var req game.DeclareWinnersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	g, err := h.ledger.DeclareAceWinners(c.Request().Context(), c.Param("id"), req.WinnerIDs)
	return respondGame(c, http.StatusOK, g, err)
}

// respondGame answers 202 with a warning when the change was applied but
// not saved.
func respondGame(c echo.Context, status int, g *game.Game, err error) error {
	if errors.Is(err, game.ErrNotPersisted) && g != nil {
		return c.JSON(http.StatusAccepted, echo.Map{
			"success": true,
			"game":    g,
			"warning": game.ErrNotPersisted.Message,
		})
	}
	if err != nil {
		return err
	}
	return c.JSON(status, echo.Map{"success": true, "game": g})
}
