package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/thesrcielos/ScoreBoard/internal/user"
)

const (
	AuthCookie = "auth-token"

	contextKey = "user"
)

// SetupJWTMiddleware accepts the token either as a bearer header or as the
// auth cookie set on login.
func SetupJWTMiddleware(tokens *user.TokenIssuer) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  tokens.Secret(),
		TokenLookup: "header:Authorization:Bearer ,cookie:" + AuthCookie,
		ContextKey:  contextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(user.JwtCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
		},
	})
}

// Claims returns the verified claims stored by SetupJWTMiddleware.
func Claims(c echo.Context) (*user.JwtCustomClaims, bool) {
	token, ok := c.Get(contextKey).(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := token.Claims.(*user.JwtCustomClaims)
	return claims, ok
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := Claims(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
		}
		if !claims.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
		}
		return next(c)
	}
}
