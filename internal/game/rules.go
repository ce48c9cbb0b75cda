package game

const DefaultMaxPoints = 120

// rules holds everything that differs between variants. rulesFor is the only
// place that switches on Variant.
type rules interface {
	// normalizeCreate validates the roster size and returns the max points
	// to store on the game.
	normalizeCreate(playerCount int, maxPoints *int) (*int, error)
	// joinPoints returns the starting total for a mid-game joiner.
	joinPoints(g *Game) (int, error)
	// applyRound adds the round scores to the totals and reports whether the
	// round ended the game.
	applyRound(g *Game, scores map[string]int) (roundOutcome, error)
}

type roundOutcome struct {
	completed bool
	winner    string
}

func rulesFor(v Variant) (rules, error) {
	switch v {
	case VariantRummy:
		return rummyRules{}, nil
	case VariantChess:
		return chessRules{}, nil
	case VariantAce:
		return aceRules{}, nil
	}
	return nil, ErrInvalidVariant
}

type rummyRules struct{}

func (rummyRules) normalizeCreate(playerCount int, maxPoints *int) (*int, error) {
	if playerCount < 2 {
		return nil, ErrNotEnoughPlayers
	}
	mp := DefaultMaxPoints
	if maxPoints != nil {
		mp = *maxPoints
	}
	if mp <= 0 {
		return nil, ErrMaxPointsRequired
	}
	return &mp, nil
}

// Joiners start one point above the current leader so they stay behind.
func (rummyRules) joinPoints(g *Game) (int, error) {
	highest := 0
	for _, p := range g.Players {
		if p.IsLost {
			return 0, ErrRosterFrozen
		}
		if p.TotalPoints > highest {
			highest = p.TotalPoints
		}
	}
	return highest + 1, nil
}

func (rummyRules) applyRound(g *Game, scores map[string]int) (roundOutcome, error) {
	if g.MaxPoints == nil || *g.MaxPoints <= 0 {
		return roundOutcome{}, ErrMaxPointsRequired
	}
	limit := *g.MaxPoints

	survivors := 0
	var survivor string
	for i := range g.Players {
		p := &g.Players[i]
		p.TotalPoints += scores[p.ID]
		p.IsLost = p.TotalPoints >= limit
		if !p.IsLost {
			survivors++
			survivor = p.ID
		}
	}

	switch survivors {
	case 1:
		return roundOutcome{completed: true, winner: survivor}, nil
	case 0:
		return roundOutcome{completed: true, winner: lowestTotal(g.Players)}, nil
	}
	return roundOutcome{}, nil
}

// lowestTotal breaks ties toward the earliest joined player.
func lowestTotal(players []GamePlayer) string {
	if len(players) == 0 {
		return ""
	}
	best := players[0]
	for _, p := range players[1:] {
		if p.TotalPoints < best.TotalPoints {
			best = p
		}
	}
	return best.ID
}

type aceRules struct{}

func (aceRules) normalizeCreate(playerCount int, _ *int) (*int, error) {
	if playerCount < 2 {
		return nil, ErrNotEnoughPlayers
	}
	return nil, nil
}

func (aceRules) joinPoints(*Game) (int, error) {
	return 0, nil
}

// Ace never ends on its own; the winners are declared explicitly.
func (aceRules) applyRound(g *Game, scores map[string]int) (roundOutcome, error) {
	for i := range g.Players {
		g.Players[i].TotalPoints += scores[g.Players[i].ID]
		g.Players[i].IsLost = false
	}
	return roundOutcome{}, nil
}

type chessRules struct{}

func (chessRules) normalizeCreate(playerCount int, _ *int) (*int, error) {
	if playerCount != 2 {
		return nil, ErrChessPlayerCount
	}
	return nil, nil
}

func (chessRules) joinPoints(*Game) (int, error) {
	return 0, ErrChessAddPlayer
}

func (chessRules) applyRound(*Game, map[string]int) (roundOutcome, error) {
	return roundOutcome{}, ErrChessRounds
}

// AceScores builds the round for an ace event: the ace player scores 0 and
// everybody else scores 1.
func AceScores(g *Game, acePlayerID string) map[string]int {
	scores := make(map[string]int, len(g.Players))
	for _, p := range g.Players {
		if p.ID == acePlayerID {
			scores[p.ID] = 0
			continue
		}
		scores[p.ID] = 1
	}
	return scores
}

// TopScorers lists the players tied at the highest total, in player order.
func TopScorers(g *Game) []string {
	if len(g.Players) == 0 {
		return []string{}
	}
	highest := g.Players[0].TotalPoints
	for _, p := range g.Players[1:] {
		if p.TotalPoints > highest {
			highest = p.TotalPoints
		}
	}
	ids := []string{}
	for _, p := range g.Players {
		if p.TotalPoints == highest {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
