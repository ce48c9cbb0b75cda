package game

import (
	"net/http"

	"github.com/thesrcielos/ScoreBoard/internal/apperrors"
)

// Precondition failures keep the exact reason text clients branch on.
var (
	ErrGameNotFound        = apperrors.NewAppError(http.StatusNotFound, "Game not found", nil)
	ErrPlayerNotFound      = apperrors.NewAppError(http.StatusNotFound, "Player not found", nil)
	ErrPlayerAlreadyInGame = apperrors.NewAppError(http.StatusConflict, "Player already in game", nil)
	ErrRosterFrozen        = apperrors.NewAppError(http.StatusConflict, "Cannot add players after someone has reached max points!", nil)
	ErrGameCompleted       = apperrors.NewAppError(http.StatusConflict, "Game is already completed", nil)
	ErrPlayerNotInGame     = apperrors.NewAppError(http.StatusBadRequest, "Player is not part of this game", nil)
	ErrInvalidVariant      = apperrors.NewAppError(http.StatusBadRequest, "type must be rummy, chess or ace", nil)
	ErrChessPlayerCount    = apperrors.NewAppError(http.StatusBadRequest, "Chess requires exactly 2 players", nil)
	ErrNotEnoughPlayers    = apperrors.NewAppError(http.StatusBadRequest, "At least 2 players are required", nil)
	ErrDuplicatePlayers    = apperrors.NewAppError(http.StatusBadRequest, "A player can only be selected once", nil)
	ErrMaxPointsRequired   = apperrors.NewAppError(http.StatusBadRequest, "maxPoints must be a positive number for rummy", nil)
	ErrChessRounds         = apperrors.NewAppError(http.StatusBadRequest, "Chess games do not record rounds", nil)
	ErrChessAddPlayer      = apperrors.NewAppError(http.StatusBadRequest, "Chess games always have exactly 2 players", nil)
	ErrNotAceGame          = apperrors.NewAppError(http.StatusBadRequest, "Only ace games have an ace player", nil)
	ErrWinnerRequired      = apperrors.NewAppError(http.StatusBadRequest, "Please select a winner", nil)
	ErrWinnersRequired     = apperrors.NewAppError(http.StatusBadRequest, "Please select at least one winner", nil)
	ErrNotPersisted        = apperrors.NewAppError(http.StatusServiceUnavailable, "Changes were applied but could not be saved", nil)
	ErrInvalidImportedGame = apperrors.NewAppError(http.StatusBadRequest, "Imported game is invalid", nil)
)
