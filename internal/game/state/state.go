package state

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Viewer is one websocket connection following a set of games.
type Viewer struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	ConnMu sync.Mutex

	games map[string]bool
}

var (
	viewers   = make(map[string]*Viewer)
	viewersMu sync.RWMutex
)

func RegisterViewer(id, userID string, conn *websocket.Conn) *Viewer {
	viewersMu.Lock()
	defer viewersMu.Unlock()

	v := &Viewer{
		ID:     id,
		UserID: userID,
		Conn:   conn,
		games:  make(map[string]bool),
	}
	viewers[id] = v
	return v
}

func UnregisterViewer(id string) {
	viewersMu.Lock()
	defer viewersMu.Unlock()

	delete(viewers, id)
}

func GetViewer(id string) *Viewer {
	viewersMu.RLock()
	defer viewersMu.RUnlock()

	return viewers[id]
}

// Watch reports false when the viewer is gone.
func Watch(viewerID, gameID string) bool {
	viewersMu.Lock()
	defer viewersMu.Unlock()

	v, ok := viewers[viewerID]
	if !ok {
		return false
	}
	v.games[gameID] = true
	return true
}

func Unwatch(viewerID, gameID string) {
	viewersMu.Lock()
	defer viewersMu.Unlock()

	if v, ok := viewers[viewerID]; ok {
		delete(v.games, gameID)
	}
}

func ViewersOf(gameID string) []*Viewer {
	viewersMu.RLock()
	defer viewersMu.RUnlock()

	out := make([]*Viewer, 0)
	for _, v := range viewers {
		if v.games[gameID] {
			out = append(out, v)
		}
	}
	return out
}
