package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/thesrcielos/ScoreBoard/internal/apperrors"
	"github.com/thesrcielos/ScoreBoard/internal/common/clock"
	"github.com/thesrcielos/ScoreBoard/internal/common/uuid"
	"github.com/thesrcielos/ScoreBoard/internal/player"
)

// GameRepository durably stores games. Games are partitioned by variant
// behind this interface.
type GameRepository interface {
	ListGames(ctx context.Context) ([]Game, error)
	ReplaceAllGames(ctx context.Context, games []Game) error
	UpsertGame(ctx context.Context, g *Game) error
}

// PlayerStore is the part of the roster the ledger reads and writes.
type PlayerStore interface {
	GetPlayer(ctx context.Context, id string) (*player.Player, error)
	RecordResults(ctx context.Context, results []player.Result) ([]player.Player, error)
}

// Sequence hands out the per-day game number used in titles.
type Sequence interface {
	Next(ctx context.Context, day string, seed int) (int, error)
}

type Notifier interface {
	GameUpdated(ctx context.Context, g *Game)
}

type Config struct {
	Repository GameRepository
	Players    PlayerStore
	Sequence   Sequence
	Notifier   Notifier
	Clock      clock.Clock
	UUID       uuid.UUID
	Location   *time.Location
	Logger     *slog.Logger
}

// LedgerService owns every game in memory and is the source of truth for
// the running process. Mutations of one game are serialized; each one works
// on a copy that replaces the stored game once it is complete.
type LedgerService struct {
	repo     GameRepository
	players  PlayerStore
	seq      Sequence
	notifier Notifier
	clock    clock.Clock
	uuid     uuid.UUID
	loc      *time.Location
	logger   *slog.Logger

	mu    sync.RWMutex
	games map[string]*Game
	order []string

	createMu sync.Mutex
	locks    keyedMutex
}

func NewLedgerService(cfg *Config) (*LedgerService, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Repository == nil {
		return nil, errors.New("game repository cannot be nil")
	}
	if cfg.Players == nil {
		return nil, errors.New("player store cannot be nil")
	}

	s := &LedgerService{
		repo:     cfg.Repository,
		players:  cfg.Players,
		seq:      cfg.Sequence,
		notifier: cfg.Notifier,
		clock:    cfg.Clock,
		uuid:     cfg.UUID,
		loc:      cfg.Location,
		logger:   cfg.Logger,
		games:    make(map[string]*Game),
		locks:    keyedMutex{locks: make(map[string]*sync.Mutex)},
	}
	if s.seq == nil {
		s.seq = NewMemorySequence()
	}
	if s.notifier == nil {
		s.notifier = NopNotifier{}
	}
	if s.clock == nil {
		s.clock = &clock.DefaultClock{}
	}
	if s.uuid == nil {
		s.uuid = uuid.New()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Load replaces the in-memory ledger with the games held by the repository.
func (s *LedgerService) Load(ctx context.Context) error {
	games, err := s.repo.ListGames(ctx)
	if err != nil {
		return fmt.Errorf("load games: %w", err)
	}
	s.replaceAll(games)
	s.logger.Info("games_loaded", slog.Int("count", len(games)))
	return nil
}

func (s *LedgerService) replaceAll(games []Game) {
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].CreatedAt.Before(games[j].CreatedAt)
	})

	byID := make(map[string]*Game, len(games))
	order := make([]string, 0, len(games))
	for i := range games {
		g := games[i].Clone()
		g.EnsureHistory()
		if _, dup := byID[g.ID]; !dup {
			order = append(order, g.ID)
		}
		byID[g.ID] = g
	}

	s.mu.Lock()
	s.games = byID
	s.order = order
	s.mu.Unlock()
}

func (s *LedgerService) CreateGame(ctx context.Context, req CreateGameRequest) (*Game, error) {
	variant, err := ParseVariant(req.Variant)
	if err != nil {
		return nil, err
	}
	r, err := rulesFor(variant)
	if err != nil {
		return nil, err
	}
	if err := checkDistinct(req.PlayerIDs); err != nil {
		return nil, err
	}
	maxPoints, err := r.normalizeCreate(len(req.PlayerIDs), req.MaxPoints)
	if err != nil {
		return nil, err
	}

	gamePlayers := make([]GamePlayer, 0, len(req.PlayerIDs))
	for _, id := range req.PlayerIDs {
		p, err := s.lookupPlayer(ctx, id)
		if err != nil {
			return nil, err
		}
		gamePlayers = append(gamePlayers, GamePlayer{
			ID:     p.ID,
			Name:   p.Name,
			Avatar: p.Avatar,
		})
	}

	// numbering reads the games of the day, so creations run one at a time
	s.createMu.Lock()
	defer s.createMu.Unlock()

	now := s.clock.Now()
	number := s.nextNumber(ctx, now)

	g := &Game{
		ID:        s.uuid.NewUUID(),
		Variant:   variant,
		Title:     fmt.Sprintf("%s Game %d", variant.Title(), number),
		CreatedAt: now,
		Status:    StatusInProgress,
		MaxPoints: maxPoints,
		Players:   gamePlayers,
		Rounds:    []Round{},
		History:   []Event{},
	}

	s.mu.Lock()
	s.games[g.ID] = g
	s.order = append(s.order, g.ID)
	s.mu.Unlock()

	s.logger.Info("game_created",
		slog.String("game_id", g.ID),
		slog.String("variant", string(variant)),
		slog.String("title", g.Title),
		slog.Int("players", len(gamePlayers)),
	)
	return s.commit(ctx, g, false)
}

func (s *LedgerService) nextNumber(ctx context.Context, now time.Time) int {
	day := now.In(s.loc).Format(time.DateOnly)
	seed := s.countCreatedOn(day)
	n, err := s.seq.Next(ctx, day, seed)
	if err != nil {
		s.logger.Warn("game_sequence_failed", slog.String("day", day), slog.Any("error", err))
		return seed + 1
	}
	return n
}

func (s *LedgerService) countCreatedOn(day string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, g := range s.games {
		if g.CreatedAt.In(s.loc).Format(time.DateOnly) == day {
			count++
		}
	}
	return count
}

// AddPlayerToGame admits a late joiner. Rummy joiners start one point above
// the leader; ace joiners start at zero.
func (s *LedgerService) AddPlayerToGame(ctx context.Context, gameID, playerID string) (*Game, error) {
	return s.mutate(ctx, gameID, "player_added", func(g *Game) error {
		r, err := rulesFor(g.Variant)
		if err != nil {
			return err
		}
		points, err := r.joinPoints(g)
		if err != nil {
			return err
		}
		if _, ok := g.Player(playerID); ok {
			return ErrPlayerAlreadyInGame
		}
		p, err := s.lookupPlayer(ctx, playerID)
		if err != nil {
			return err
		}

		g.Players = append(g.Players, GamePlayer{
			ID:          p.ID,
			Name:        p.Name,
			Avatar:      p.Avatar,
			TotalPoints: points,
		})
		g.History = append(g.History, Event{
			Kind:           EventPlayerAdded,
			ID:             s.uuid.NewUUID(),
			Timestamp:      s.clock.Now(),
			PlayerID:       p.ID,
			PlayerName:     p.Name,
			PlayerAvatar:   p.Avatar,
			StartingPoints: &points,
		})
		return nil
	})
}

// AddRound records one round. Scores for players outside the game are
// dropped and missing players score zero.
func (s *LedgerService) AddRound(ctx context.Context, gameID string, scores map[string]int) (*Game, error) {
	return s.mutate(ctx, gameID, "round_added", func(g *Game) error {
		return s.applyRound(g, scores)
	})
}

// MarkAce records an ace event: the ace player scores nothing and every
// other player scores one point.
func (s *LedgerService) MarkAce(ctx context.Context, gameID, acePlayerID string) (*Game, error) {
	return s.mutate(ctx, gameID, "ace_marked", func(g *Game) error {
		if g.Variant != VariantAce {
			return ErrNotAceGame
		}
		if _, ok := g.Player(acePlayerID); !ok {
			return ErrPlayerNotInGame
		}
		return s.applyRound(g, AceScores(g, acePlayerID))
	})
}

func (s *LedgerService) applyRound(g *Game, scores map[string]int) error {
	r, err := rulesFor(g.Variant)
	if err != nil {
		return err
	}

	recorded := make(map[string]int, len(g.Players))
	for _, p := range g.Players {
		if v, ok := scores[p.ID]; ok {
			recorded[p.ID] = v
		}
	}

	outcome, err := r.applyRound(g, recorded)
	if err != nil {
		return err
	}

	round := Round{
		ID:          s.uuid.NewUUID(),
		RoundNumber: len(g.Rounds) + 1,
		Scores:      recorded,
		Timestamp:   s.clock.Now(),
	}
	g.Rounds = append(g.Rounds, round)
	g.History = append(g.History, roundEvent(round))

	if outcome.completed {
		g.Status = StatusCompleted
		g.Winner = outcome.winner
	}
	return nil
}

// DeclareWinner closes a game with a single winner.
func (s *LedgerService) DeclareWinner(ctx context.Context, gameID, winnerID string) (*Game, error) {
	if winnerID == "" {
		return nil, ErrWinnerRequired
	}
	return s.mutate(ctx, gameID, "winner_declared", func(g *Game) error {
		if _, ok := g.Player(winnerID); !ok {
			return ErrPlayerNotInGame
		}
		g.Status = StatusCompleted
		g.Winner = winnerID
		g.Winners = nil
		return nil
	})
}

// DeclareAceWinners closes a game with one or more winners. The order of
// winnerIDs is kept and the first one doubles as Winner.
func (s *LedgerService) DeclareAceWinners(ctx context.Context, gameID string, winnerIDs []string) (*Game, error) {
	winners := dedupe(winnerIDs)
	if len(winners) == 0 {
		return nil, ErrWinnersRequired
	}
	return s.mutate(ctx, gameID, "winners_declared", func(g *Game) error {
		for _, id := range winners {
			if _, ok := g.Player(id); !ok {
				return ErrPlayerNotInGame
			}
		}
		g.Status = StatusCompleted
		g.Winners = winners
		g.Winner = winners[0]
		return nil
	})
}

// Apply stores a game published by another instance when it is newer than
// the local copy. It must not be called from inside a mutation of the same
// game.
func (s *LedgerService) Apply(g *Game) bool {
	if g == nil || g.ID == "" {
		return false
	}
	unlock := s.locks.Lock(g.ID)
	defer unlock()

	next := g.Clone()
	next.EnsureHistory()

	s.mu.Lock()
	current, ok := s.games[g.ID]
	if ok && !next.Supersedes(current) {
		s.mu.Unlock()
		return false
	}
	s.games[g.ID] = next
	if !ok {
		s.order = append(s.order, g.ID)
	}
	s.mu.Unlock()

	s.logger.Debug("game_applied",
		slog.String("game_id", next.ID),
		slog.Int("events", len(next.History)),
		slog.String("status", string(next.Status)),
	)
	return true
}

// SuggestAceWinners returns the players tied at the top, the usual
// pre-selection before DeclareAceWinners.
func (s *LedgerService) SuggestAceWinners(gameID string) ([]string, error) {
	g, ok := s.GetGame(gameID)
	if !ok {
		return nil, ErrGameNotFound
	}
	return TopScorers(g), nil
}

func (s *LedgerService) GetGame(id string) (*Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// ListGames returns matching games, newest first.
func (s *LedgerService) ListGames(filter GameFilter) []*Game {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Game, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		g := s.games[s.order[i]]
		if filter.Variant != "" && g.Variant != filter.Variant {
			continue
		}
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		out = append(out, g.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *LedgerService) RecentGames(limit int) []*Game {
	games := s.ListGames(GameFilter{})
	if limit > 0 && len(games) > limit {
		games = games[:limit]
	}
	return games
}

// VariantLeaderboard ranks players on the completed games of one variant.
func (s *LedgerService) VariantLeaderboard(variant Variant, limit int) []PlayerStanding {
	return Standings(s.ListGames(GameFilter{Variant: variant, Status: StatusCompleted}), limit)
}

// ImportGames replaces every stored game. Nothing changes when a game is
// invalid or the repository write fails.
func (s *LedgerService) ImportGames(ctx context.Context, games []Game) error {
	seen := make(map[string]bool, len(games))
	for i := range games {
		g := &games[i]
		if err := validateImported(g); err != nil {
			return err
		}
		if seen[g.ID] {
			return apperrors.Wrap(ErrInvalidImportedGame, fmt.Errorf("duplicate id %s", g.ID))
		}
		seen[g.ID] = true
		g.EnsureHistory()
	}

	if err := s.repo.ReplaceAllGames(ctx, games); err != nil {
		s.logger.Error("games_import_failed", slog.Int("count", len(games)), slog.Any("error", err))
		return apperrors.NewAppError(http.StatusInternalServerError, "Save failed", err)
	}
	s.replaceAll(games)
	s.logger.Info("games_imported", slog.Int("count", len(games)))
	return nil
}

func validateImported(g *Game) error {
	if g.ID == "" {
		return apperrors.Wrap(ErrInvalidImportedGame, errors.New("missing id"))
	}
	v, err := ParseVariant(string(g.Variant))
	if err != nil {
		return apperrors.Wrap(ErrInvalidImportedGame, fmt.Errorf("game %s: %w", g.ID, err))
	}
	g.Variant = v
	if g.Status != StatusInProgress && g.Status != StatusCompleted {
		return apperrors.Wrap(ErrInvalidImportedGame, fmt.Errorf("game %s: unknown status %q", g.ID, g.Status))
	}
	r, _ := rulesFor(v)
	maxPoints, err := r.normalizeCreate(len(g.Players), g.MaxPoints)
	if err != nil {
		return apperrors.Wrap(ErrInvalidImportedGame, fmt.Errorf("game %s: %w", g.ID, err))
	}
	g.MaxPoints = maxPoints
	return nil
}

func (s *LedgerService) mutate(ctx context.Context, gameID, op string, fn func(g *Game) error) (*Game, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	s.mu.RLock()
	current, ok := s.games[gameID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrGameNotFound
	}
	if current.IsCompleted() {
		return nil, ErrGameCompleted
	}

	next := current.Clone()
	next.EnsureHistory()
	if err := fn(next); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.games[gameID] = next
	s.mu.Unlock()

	s.logger.Info("game_"+op,
		slog.String("game_id", next.ID),
		slog.String("status", string(next.Status)),
		slog.Int("rounds", len(next.Rounds)),
	)
	return s.commit(ctx, next, next.IsCompleted())
}

// commit persists g and, when it just completed, the participants' results.
// The in-memory state is kept when either write fails; the caller gets the
// game back together with ErrNotPersisted.
func (s *LedgerService) commit(ctx context.Context, g *Game, completed bool) (*Game, error) {
	var errs []error
	if completed {
		s.logger.Info("game_completed",
			slog.String("game_id", g.ID),
			slog.String("winner", g.Winner),
			slog.Any("winners", g.Winners),
		)
		if _, err := s.players.RecordResults(ctx, results(g)); err != nil {
			errs = append(errs, fmt.Errorf("record results: %w", err))
		}
	}
	if err := s.repo.UpsertGame(ctx, g); err != nil {
		errs = append(errs, fmt.Errorf("save game: %w", err))
	}

	s.notifier.GameUpdated(ctx, g.Clone())

	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.logger.Error("game_persist_failed", slog.String("game_id", g.ID), slog.Any("error", err))
		return g.Clone(), apperrors.Wrap(ErrNotPersisted, err)
	}
	return g.Clone(), nil
}

func results(g *Game) []player.Result {
	out := make([]player.Result, 0, len(g.Players))
	for _, p := range g.Players {
		out = append(out, player.Result{PlayerID: p.ID, Won: g.IsWinner(p.ID)})
	}
	return out
}

func (s *LedgerService) lookupPlayer(ctx context.Context, id string) (*player.Player, error) {
	p, err := s.players.GetPlayer(ctx, id)
	if errors.Is(err, player.ErrPlayerNotFound) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "Error loading player", err)
	}
	return p, nil
}

func checkDistinct(ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return ErrDuplicatePlayers
		}
		seen[id] = true
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
