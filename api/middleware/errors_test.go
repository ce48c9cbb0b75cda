package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/thesrcielos/ScoreBoard/internal/apperrors"
)

func TestErrorHandler(t *testing.T) {
	handler := ErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"app error", apperrors.NewAppError(http.StatusConflict, "Player already in game", nil), http.StatusConflict, `{"error":"Player already in game","success":false}`},
		{"wrapped app error", apperrors.Wrap(apperrors.NewAppError(http.StatusServiceUnavailable, "not saved", nil), errors.New("disk")), http.StatusServiceUnavailable, `{"error":"not saved","success":false}`},
		{"echo error", echo.NewHTTPError(http.StatusForbidden, "Admin access required"), http.StatusForbidden, `{"error":"Admin access required","success":false}`},
		{"echo error without text", echo.ErrNotFound, http.StatusNotFound, `{"error":"Not Found","success":false}`},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, `{"error":"Internal server error","success":false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handler(tt.err, c)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
