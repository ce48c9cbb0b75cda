package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	api_middleware "github.com/thesrcielos/ScoreBoard/api/middleware"
	"github.com/thesrcielos/ScoreBoard/internal/user"
)

type AuthHandler struct {
	users        *user.UserService
	tokenTTL     time.Duration
	secureCookie bool
}

func NewAuthHandler(users *user.UserService, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{users: users, tokenTTL: tokenTTL, secureCookie: secureCookie}
}

func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me, auth)
}

func (h *AuthHandler) RegisterUserRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("", h.CreateUser, auth, api_middleware.RequireAdmin)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req user.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	resp, err := h.users.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}

	c.SetCookie(h.cookie(resp.Token, int(h.tokenTTL.Seconds())))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    resp.User,
		"token":   resp.Token,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.cookie("", -1))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := api_middleware.Claims(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	u, err := h.users.Me(c.Request().Context(), claims.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u})
}

func (h *AuthHandler) CreateUser(c echo.Context) error {
	var req user.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	u, err := h.users.CreateUser(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "user": u})
}

func (h *AuthHandler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     api_middleware.AuthCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
