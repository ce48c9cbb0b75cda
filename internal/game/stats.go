package game

import (
	"sort"

	"github.com/thesrcielos/ScoreBoard/internal/player"
)

const LeaderboardSize = 5

// Standings ranks everyone who took part in the completed games by win
// percentage, then wins, then games played. Names and avatars come from the
// first game a player appears in, so pass games newest first.
func Standings(games []*Game, limit int) []PlayerStanding {
	byID := make(map[string]*PlayerStanding)
	order := []string{}

	for _, g := range games {
		if !g.IsCompleted() {
			continue
		}
		for _, p := range g.Players {
			s, ok := byID[p.ID]
			if !ok {
				s = &PlayerStanding{ID: p.ID, Name: p.Name, Avatar: p.Avatar}
				byID[p.ID] = s
				order = append(order, p.ID)
			}
			s.TotalGames++
			if g.IsWinner(p.ID) {
				s.Wins++
			}
		}
	}

	standings := make([]PlayerStanding, 0, len(order))
	for _, id := range order {
		s := byID[id]
		s.WinPercentage = player.WinPercentage(s.Wins, s.TotalGames)
		standings = append(standings, *s)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.WinPercentage != b.WinPercentage {
			return a.WinPercentage > b.WinPercentage
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.TotalGames > b.TotalGames
	})

	if limit > 0 && len(standings) > limit {
		standings = standings[:limit]
	}
	return standings
}
