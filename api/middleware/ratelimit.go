package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/thesrcielos/ScoreBoard/internal/ratelimit"
)

// RateLimit budgets requests per client IP. Limiter failures let the
// request through.
func RateLimit(limiter ratelimit.Limiter, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			d, err := limiter.Allow(c.Request().Context(), ip)
			if err != nil {
				logger.Warn("ratelimit_unavailable", slog.String("ip", ip), slog.Any("error", err))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if d.Allowed {
				return next(c)
			}

			minutes := d.ResetMinutes()
			h.Set("X-RateLimit-Reset", strconv.Itoa(minutes))
			logger.Warn("ratelimit_blocked", slog.String("ip", ip), slog.Int("reset_minutes", minutes))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":   "Too Many Requests",
				"message": fmt.Sprintf("Rate limit exceeded. Blocked for %d more minutes.", minutes),
				"resetIn": minutes,
			})
		}
	}
}
