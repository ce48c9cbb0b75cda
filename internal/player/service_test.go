package player

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thesrcielos/ScoreBoard/internal/apperrors"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListPlayers(ctx context.Context) ([]Player, error) {
	args := m.Called(ctx)
	players, _ := args.Get(0).([]Player)
	return players, args.Error(1)
}

func (m *MockStore) GetPlayer(ctx context.Context, id string) (*Player, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*Player)
	return p, args.Error(1)
}

func (m *MockStore) CreatePlayer(ctx context.Context, p *Player) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockStore) ReplaceAllPlayers(ctx context.Context, players []Player) error {
	args := m.Called(ctx, players)
	return args.Error(0)
}

func (m *MockStore) RecordResults(ctx context.Context, results []Result) ([]Player, error) {
	args := m.Called(ctx, results)
	players, _ := args.Get(0).([]Player)
	return players, args.Error(1)
}

func newTestPlayerService() (*PlayerService, *MockStore) {
	store := &MockStore{}
	return NewPlayerService(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestWinPercentage(t *testing.T) {
	assert.Equal(t, 0, WinPercentage(0, 0))
	assert.Equal(t, 33, WinPercentage(1, 3))
	assert.Equal(t, 67, WinPercentage(2, 3))
	assert.Equal(t, 50, WinPercentage(1, 2))
	assert.Equal(t, 100, WinPercentage(4, 4))
}

func TestPlayer_RecordGame(t *testing.T) {
	p := Player{}
	p.RecordGame(true)
	p.RecordGame(false)
	p.RecordGame(false)

	assert.Equal(t, 1, p.Wins)
	assert.Equal(t, 3, p.TotalGames)
	assert.Equal(t, 33, p.WinPercentage)
}

func TestPlayerService_Leaderboard(t *testing.T) {
	service, store := newTestPlayerService()
	store.On("ListPlayers", mock.Anything).Return([]Player{
		{ID: "low", Wins: 1, WinPercentage: 10, TotalGames: 10},
		{ID: "pct", Wins: 3, WinPercentage: 75, TotalGames: 4},
		{ID: "games", Wins: 3, WinPercentage: 50, TotalGames: 6},
		{ID: "more-games", Wins: 3, WinPercentage: 50, TotalGames: 7},
	}, nil)

	ranked, err := service.Leaderboard(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(ranked))
	for _, p := range ranked {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"pct", "more-games", "games", "low"}, ids)
	store.AssertExpectations(t)
}

func TestPlayerService_CreatePlayer(t *testing.T) {
	service, store := newTestPlayerService()
	store.On("CreatePlayer", mock.Anything, mock.AnythingOfType("*player.Player")).Return(nil)

	p, err := service.CreatePlayer(context.Background(), CreatePlayerRequest{Name: "  Ravi "})
	require.NoError(t, err)

	assert.Equal(t, "Ravi", p.Name)
	assert.NotEmpty(t, p.ID)
	assert.Contains(t, avatars, p.Avatar)
	store.AssertExpectations(t)
}

type fixedUUID string

func (f fixedUUID) NewUUID() string { return string(f) }

func TestPlayerService_CreatePlayer_UsesIDSource(t *testing.T) {
	service, store := newTestPlayerService()
	service.uuid = fixedUUID("player-42")
	store.On("CreatePlayer", mock.Anything, mock.AnythingOfType("*player.Player")).Return(nil)

	p, err := service.CreatePlayer(context.Background(), CreatePlayerRequest{Name: "Ravi"})
	require.NoError(t, err)
	assert.Equal(t, "player-42", p.ID)

	p, err = service.CreatePlayer(context.Background(), CreatePlayerRequest{ID: "given", Name: "Ravi"})
	require.NoError(t, err)
	assert.Equal(t, "given", p.ID)
}

func TestPlayerService_CreatePlayer_RequiresName(t *testing.T) {
	service, store := newTestPlayerService()

	_, err := service.CreatePlayer(context.Background(), CreatePlayerRequest{Name: " "})

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	store.AssertNotCalled(t, "CreatePlayer", mock.Anything, mock.Anything)
}

func TestPlayerService_ReplaceAllPlayers_RecomputesPercentage(t *testing.T) {
	service, store := newTestPlayerService()
	store.On("ReplaceAllPlayers", mock.Anything, mock.MatchedBy(func(players []Player) bool {
		return len(players) == 1 && players[0].WinPercentage == 25 && players[0].Avatar == "👤"
	})).Return(nil)

	err := service.ReplaceAllPlayers(context.Background(), []Player{{ID: "a", Name: "A", Wins: 1, TotalGames: 4}})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestPlayerService_ReplaceAllPlayers_StoreFailure(t *testing.T) {
	service, store := newTestPlayerService()
	store.On("ReplaceAllPlayers", mock.Anything, mock.Anything).Return(errors.New("db down"))

	err := service.ReplaceAllPlayers(context.Background(), []Player{{ID: "a", Name: "A"}})

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
}
