package player

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/thesrcielos/ScoreBoard/internal/apperrors"
)

var (
	ErrPlayerNotFound = apperrors.NewAppError(http.StatusNotFound, "Player not found", nil)
	ErrPlayerExists   = apperrors.NewAppError(http.StatusConflict, "Player already exists", nil)
)

// Store persists the roster and its aggregate statistics.
type Store interface {
	ListPlayers(ctx context.Context) ([]Player, error)
	GetPlayer(ctx context.Context, id string) (*Player, error)
	CreatePlayer(ctx context.Context, p *Player) error
	ReplaceAllPlayers(ctx context.Context, players []Player) error
	RecordResults(ctx context.Context, results []Result) ([]Player, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&Player{})
}

func (s *GormStore) ListPlayers(ctx context.Context) ([]Player, error) {
	var players []Player
	if err := s.db.WithContext(ctx).Order("created_at asc, id asc").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

func (s *GormStore) GetPlayer(ctx context.Context, id string) (*Player, error) {
	var p Player
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player %s: %w", id, err)
	}
	return &p, nil
}

func (s *GormStore) CreatePlayer(ctx context.Context, p *Player) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Player{}).Where("id = ?", p.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("check player %s: %w", p.ID, err)
	}
	if count > 0 {
		return ErrPlayerExists
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create player %s: %w", p.ID, err)
	}
	return nil
}

// ReplaceAllPlayers swaps the whole roster in one transaction. Later
// duplicates of an id win, matching a map keyed by id.
func (s *GormStore) ReplaceAllPlayers(ctx context.Context, players []Player) error {
	unique := make([]Player, 0, len(players))
	index := make(map[string]int, len(players))
	for _, p := range players {
		if i, ok := index[p.ID]; ok {
			unique[i] = p
			continue
		}
		index[p.ID] = len(unique)
		unique = append(unique, p)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Player{}).Error; err != nil {
			return fmt.Errorf("clear players: %w", err)
		}
		if len(unique) == 0 {
			return nil
		}
		if err := tx.Create(&unique).Error; err != nil {
			return fmt.Errorf("insert players: %w", err)
		}
		return nil
	})
}

// RecordResults applies one completed game to every participant's totals
// inside a single transaction and returns the updated rows.
func (s *GormStore) RecordResults(ctx context.Context, results []Result) ([]Player, error) {
	updated := make([]Player, 0, len(results))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range results {
			var p Player
			err := tx.Where("id = ?", r.PlayerID).First(&p).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// the roster entry was removed after the game started
				continue
			}
			if err != nil {
				return fmt.Errorf("load player %s: %w", r.PlayerID, err)
			}
			p.RecordGame(r.Won)
			if err := tx.Model(&Player{}).Where("id = ?", p.ID).Updates(map[string]any{
				"wins":           p.Wins,
				"total_games":    p.TotalGames,
				"win_percentage": p.WinPercentage,
			}).Error; err != nil {
				return fmt.Errorf("update player %s: %w", p.ID, err)
			}
			updated = append(updated, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
