package player

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sort"
	"strings"

	"github.com/thesrcielos/ScoreBoard/internal/apperrors"
	"github.com/thesrcielos/ScoreBoard/internal/common/uuid"
)

type PlayerService struct {
	store  Store
	uuid   uuid.UUID
	logger *slog.Logger
}

func NewPlayerService(store Store, logger *slog.Logger) *PlayerService {
	return &PlayerService{store: store, uuid: uuid.New(), logger: logger}
}

func (s *PlayerService) ListPlayers(ctx context.Context) ([]Player, error) {
	return s.store.ListPlayers(ctx)
}

// Leaderboard ranks the roster by wins, then win percentage, then games played.
func (s *PlayerService) Leaderboard(ctx context.Context) ([]Player, error) {
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	Rank(players)
	return players, nil
}

func Rank(players []Player) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.WinPercentage != b.WinPercentage {
			return a.WinPercentage > b.WinPercentage
		}
		return a.TotalGames > b.TotalGames
	})
}

func (s *PlayerService) CreatePlayer(ctx context.Context, req CreatePlayerRequest) (*Player, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewAppError(http.StatusBadRequest, "name is required", nil)
	}
	if len(name) > 40 {
		return nil, apperrors.NewAppError(http.StatusBadRequest, "name must not exceed 40 characters", nil)
	}

	p := &Player{
		ID:     req.ID,
		Name:   name,
		Avatar: req.Avatar,
	}
	if p.ID == "" {
		p.ID = s.uuid.NewUUID()
	}
	if p.Avatar == "" {
		p.Avatar = RandomAvatar()
	}

	if err := s.store.CreatePlayer(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("player_created", slog.String("player_id", p.ID), slog.String("name", p.Name))
	return p, nil
}

func (s *PlayerService) ReplaceAllPlayers(ctx context.Context, players []Player) error {
	for i := range players {
		if strings.TrimSpace(players[i].ID) == "" {
			return apperrors.NewAppError(http.StatusBadRequest, "every player needs an id", nil)
		}
		if players[i].Avatar == "" {
			players[i].Avatar = "👤"
		}
		players[i].WinPercentage = WinPercentage(players[i].Wins, players[i].TotalGames)
	}
	if err := s.store.ReplaceAllPlayers(ctx, players); err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "Save failed", err)
	}
	s.logger.Info("players_replaced", slog.Int("count", len(players)))
	return nil
}

func RandomAvatar() string {
	return avatars[rand.IntN(len(avatars))]
}
