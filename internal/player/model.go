package player

import (
	"math"
	"time"
)

var avatars = []string{"🦸", "🦹", "🕷️", "🦇", "⚡", "💪", "🔥", "⭐", "🎯", "🏆", "👊", "🛡️", "⚔️", "🎪", "🎭", "🎬"}

const AdminAvatar = "👑"

// Player is a roster member with aggregate results across every game.
type Player struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	Avatar        string    `gorm:"not null" json:"avatar"`
	Wins          int       `gorm:"not null;default:0" json:"wins"`
	TotalGames    int       `gorm:"not null;default:0" json:"totalGames"`
	WinPercentage int       `gorm:"not null;default:0" json:"winPercentage"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Result is one participant's outcome of a completed game.
type Result struct {
	PlayerID string
	Won      bool
}

type CreatePlayerRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// WinPercentage is round(wins/totalGames*100), 0 when no game was played.
func WinPercentage(wins, totalGames int) int {
	if totalGames <= 0 {
		return 0
	}
	return int(math.Round(float64(wins) / float64(totalGames) * 100))
}

func (p *Player) RecordGame(won bool) {
	p.TotalGames++
	if won {
		p.Wins++
	}
	p.WinPercentage = WinPercentage(p.Wins, p.TotalGames)
}
