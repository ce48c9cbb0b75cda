package api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	api_middleware "github.com/thesrcielos/ScoreBoard/api/middleware"
	v1 "github.com/thesrcielos/ScoreBoard/api/v1"
	"github.com/thesrcielos/ScoreBoard/internal/game"
	"github.com/thesrcielos/ScoreBoard/internal/player"
	"github.com/thesrcielos/ScoreBoard/internal/ratelimit"
	"github.com/thesrcielos/ScoreBoard/internal/user"
	"github.com/thesrcielos/ScoreBoard/websocket"
)

type Deps struct {
	Users        *user.UserService
	Players      *player.PlayerService
	Ledger       *game.LedgerService
	Tokens       *user.TokenIssuer
	Limiter      ratelimit.Limiter
	Logger       *slog.Logger
	SecureCookie bool
}

// NewServer wires every route of the HTTP API onto a fresh echo instance.
func NewServer(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = v1.JSONSerializer{}
	e.HTTPErrorHandler = api_middleware.ErrorHandler(d.Logger)

	e.Use(middleware.RequestID())
	e.Use(api_middleware.RequestLogger(d.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	auth := api_middleware.SetupJWTMiddleware(d.Tokens)

	api := e.Group("/api/v1")
	if d.Limiter != nil {
		api.Use(api_middleware.RateLimit(d.Limiter, d.Logger))
	}

	authHandler := v1.NewAuthHandler(d.Users, d.Tokens.TTL(), d.SecureCookie)
	authHandler.RegisterAuthRoutes(api.Group("/auth"), auth)
	authHandler.RegisterUserRoutes(api.Group("/users"), auth)
	v1.NewPlayerHandler(d.Players).RegisterPlayerRoutes(api.Group("/players"), auth)
	v1.NewGameHandler(d.Ledger).RegisterGameRoutes(api.Group("/games"), auth)

	e.GET("/ws", websocket.NewHandler(d.Tokens, d.Logger).WebSocketHandler)

	return e
}
