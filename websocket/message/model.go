package message

import (
	"encoding/json"
)

const (
	TypeWatchGame   = "WATCH_GAME"
	TypeUnwatchGame = "UNWATCH_GAME"
	TypeWatching    = "WATCHING"
	TypeError       = "ERROR"
)

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type WatchGamePayload struct {
	GameID string `json:"gameId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
