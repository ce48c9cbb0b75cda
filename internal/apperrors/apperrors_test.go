package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesCodeAndMessage(t *testing.T) {
	sentinel := NewAppError(http.StatusNotFound, "Game not found", nil)
	err := fmt.Errorf("loading: %w", NewAppError(http.StatusNotFound, "Game not found", nil))

	assert.True(t, errors.Is(err, sentinel))
	assert.False(t, errors.Is(err, NewAppError(http.StatusNotFound, "Player not found", nil)))
	assert.False(t, errors.Is(err, NewAppError(http.StatusConflict, "Game not found", nil)))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	sentinel := NewAppError(http.StatusServiceUnavailable, "Save failed", nil)

	err := Wrap(sentinel, cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "Save failed: connection refused", err.Error())
}

func TestAs(t *testing.T) {
	_, ok := As(errors.New("plain"))
	assert.False(t, ok)

	appErr, ok := As(fmt.Errorf("ctx: %w", NewAppError(http.StatusBadRequest, "bad", nil)))
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}
