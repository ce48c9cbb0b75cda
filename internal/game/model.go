package game

import (
	"strings"
	"time"
)

type Variant string

const (
	VariantRummy Variant = "rummy"
	VariantChess Variant = "chess"
	VariantAce   Variant = "ace"
)

var Variants = []Variant{VariantRummy, VariantChess, VariantAce}

// ParseVariant accepts any casing ("Rummy", "rummy").
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case VariantRummy, VariantChess, VariantAce:
		return v, nil
	}
	return "", ErrInvalidVariant
}

// Title is the display name used in generated game titles.
func (v Variant) Title() string {
	if v == "" {
		return ""
	}
	return strings.ToUpper(string(v[:1])) + string(v[1:])
}

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type EventKind string

const (
	EventRound       EventKind = "round"
	EventPlayerAdded EventKind = "player_added"
)

// GamePlayer is a participation record. Name and Avatar are snapshots taken
// when the player joined.
type GamePlayer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	TotalPoints int    `json:"totalPoints"`
	IsLost      bool   `json:"isLost"`
}

type Round struct {
	ID          string         `json:"id"`
	RoundNumber int            `json:"roundNumber"`
	Scores      map[string]int `json:"scores"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Event is one entry of a game's narrative: either a round or a mid-game join.
type Event struct {
	Kind      EventKind `json:"type"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	RoundNumber int            `json:"roundNumber,omitempty"`
	Scores      map[string]int `json:"scores,omitempty"`

	PlayerID       string `json:"playerId,omitempty"`
	PlayerName     string `json:"playerName,omitempty"`
	PlayerAvatar   string `json:"playerAvatar,omitempty"`
	StartingPoints *int   `json:"startingPoints,omitempty"`
}

func roundEvent(r Round) Event {
	return Event{
		Kind:        EventRound,
		ID:          r.ID,
		Timestamp:   r.Timestamp,
		RoundNumber: r.RoundNumber,
		Scores:      r.Scores,
	}
}

type Game struct {
	ID        string       `json:"id"`
	Variant   Variant      `json:"type"`
	Title     string       `json:"title"`
	CreatedAt time.Time    `json:"createdAt"`
	Status    Status       `json:"status"`
	MaxPoints *int         `json:"maxPoints"`
	Winner    string       `json:"winner,omitempty"`
	Winners   []string     `json:"winners,omitempty"`
	Players   []GamePlayer `json:"players"`
	Rounds    []Round      `json:"rounds"`
	History   []Event      `json:"history"`
}

func (g *Game) IsCompleted() bool {
	return g.Status == StatusCompleted
}

func (g *Game) Player(id string) (*GamePlayer, bool) {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i], true
		}
	}
	return nil, false
}

// IsWinner honours the winner set when present and the single winner otherwise.
func (g *Game) IsWinner(playerID string) bool {
	if len(g.Winners) > 0 {
		for _, id := range g.Winners {
			if id == playerID {
				return true
			}
		}
		return false
	}
	return g.Winner != "" && g.Winner == playerID
}

// Supersedes reports whether g is a later revision of other. Every mutation
// either appends an event or completes the game, and completed games never
// change again.
func (g *Game) Supersedes(other *Game) bool {
	if other.IsCompleted() {
		return false
	}
	if g.IsCompleted() {
		return len(g.History) >= len(other.History)
	}
	return len(g.History) > len(other.History)
}

// EnsureHistory rebuilds the event log from rounds for documents written
// before join events were tracked.
func (g *Game) EnsureHistory() {
	if g.Players == nil {
		g.Players = []GamePlayer{}
	}
	if g.Rounds == nil {
		g.Rounds = []Round{}
	}
	if g.History != nil {
		return
	}
	g.History = make([]Event, 0, len(g.Rounds))
	for _, r := range g.Rounds {
		g.History = append(g.History, roundEvent(r))
	}
}

// Clone returns a deep copy so callers never share slices with the ledger.
func (g *Game) Clone() *Game {
	c := *g
	if g.MaxPoints != nil {
		mp := *g.MaxPoints
		c.MaxPoints = &mp
	}
	if g.Winners != nil {
		c.Winners = append([]string(nil), g.Winners...)
	}
	c.Players = append([]GamePlayer(nil), g.Players...)
	if c.Players == nil {
		c.Players = []GamePlayer{}
	}
	c.Rounds = make([]Round, len(g.Rounds))
	for i, r := range g.Rounds {
		r.Scores = cloneScores(r.Scores)
		c.Rounds[i] = r
	}
	c.History = make([]Event, len(g.History))
	for i, e := range g.History {
		e.Scores = cloneScores(e.Scores)
		if e.StartingPoints != nil {
			sp := *e.StartingPoints
			e.StartingPoints = &sp
		}
		c.History[i] = e
	}
	return &c
}

func cloneScores(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type CreateGameRequest struct {
	Variant   string   `json:"type"`
	PlayerIDs []string `json:"playerIds"`
	MaxPoints *int     `json:"maxPoints"`
}

type AddRoundRequest struct {
	Scores map[string]int `json:"scores"`
}

type AddPlayerRequest struct {
	PlayerID string `json:"playerId"`
}

type MarkAceRequest struct {
	PlayerID string `json:"playerId"`
}

type DeclareWinnerRequest struct {
	WinnerID string `json:"winnerId"`
}

type DeclareWinnersRequest struct {
	WinnerIDs []string `json:"winnerIds"`
}

type GameFilter struct {
	Variant Variant
	Status  Status
}

// PlayerStanding is a per-variant leaderboard row computed from completed games.
type PlayerStanding struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	Wins          int    `json:"wins"`
	TotalGames    int    `json:"totalGames"`
	WinPercentage int    `json:"winPercentage"`
}
