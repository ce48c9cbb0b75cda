package game

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Each variant lives in its own table. Rummy and ace keep their players,
// rounds and history as a JSON document; chess only ever has two players
// and no rounds, so it is stored as plain columns.

type rummyGameRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Title     string
	CreatedAt time.Time `gorm:"index"`
	Status    string    `gorm:"size:16"`
	MaxPoints int
	Winner    string `gorm:"size:64"`
	Winners   string
	Data      string `gorm:"type:text"`
}

func (rummyGameRecord) TableName() string { return "rummy_games" }

type chessGameRecord struct {
	ID            string `gorm:"primaryKey;size:64"`
	Title         string
	CreatedAt     time.Time `gorm:"index"`
	Status        string    `gorm:"size:16"`
	Player1ID     string    `gorm:"column:player1_id;size:64"`
	Player1Name   string    `gorm:"column:player1_name"`
	Player1Avatar string    `gorm:"column:player1_avatar"`
	Player2ID     string    `gorm:"column:player2_id;size:64"`
	Player2Name   string    `gorm:"column:player2_name"`
	Player2Avatar string    `gorm:"column:player2_avatar"`
	Winner        string    `gorm:"size:64"`
	Winners       string
}

func (chessGameRecord) TableName() string { return "chess_games" }

type aceGameRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Title     string
	CreatedAt time.Time `gorm:"index"`
	Status    string    `gorm:"size:16"`
	Winner    string    `gorm:"size:64"`
	Winners   string
	Data      string `gorm:"type:text"`
}

func (aceGameRecord) TableName() string { return "ace_games" }

type gameData struct {
	Players []GamePlayer `json:"players"`
	Rounds  []Round      `json:"rounds"`
	History []Event      `json:"history"`
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&rummyGameRecord{}, &chessGameRecord{}, &aceGameRecord{})
}

// ListGames merges every variant table, oldest first.
func (r *GormRepository) ListGames(ctx context.Context) ([]Game, error) {
	db := r.db.WithContext(ctx)

	var rummy []rummyGameRecord
	if err := db.Find(&rummy).Error; err != nil {
		return nil, fmt.Errorf("list rummy games: %w", err)
	}
	var chess []chessGameRecord
	if err := db.Find(&chess).Error; err != nil {
		return nil, fmt.Errorf("list chess games: %w", err)
	}
	var ace []aceGameRecord
	if err := db.Find(&ace).Error; err != nil {
		return nil, fmt.Errorf("list ace games: %w", err)
	}

	games := make([]Game, 0, len(rummy)+len(chess)+len(ace))
	for _, rec := range rummy {
		g, err := rec.toGame()
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	for _, rec := range chess {
		games = append(games, *rec.toGame())
	}
	for _, rec := range ace {
		g, err := rec.toGame()
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].CreatedAt.Before(games[j].CreatedAt)
	})
	return games, nil
}

func (r *GormRepository) UpsertGame(ctx context.Context, g *Game) error {
	rec, err := toRecord(g)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(rec).Error; err != nil {
		return fmt.Errorf("save game %s: %w", g.ID, err)
	}
	return nil
}

// ReplaceAllGames clears every variant table and writes games in one
// transaction.
func (r *GormRepository) ReplaceAllGames(ctx context.Context, games []Game) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&rummyGameRecord{}, &chessGameRecord{}, &aceGameRecord{}} {
			if err := all.Delete(model).Error; err != nil {
				return fmt.Errorf("clear games: %w", err)
			}
		}
		for i := range games {
			rec, err := toRecord(&games[i])
			if err != nil {
				return err
			}
			if err := tx.Create(rec).Error; err != nil {
				return fmt.Errorf("insert game %s: %w", games[i].ID, err)
			}
		}
		return nil
	})
}

func toRecord(g *Game) (any, error) {
	switch g.Variant {
	case VariantRummy:
		data, err := encodeData(g)
		if err != nil {
			return nil, err
		}
		maxPoints := DefaultMaxPoints
		if g.MaxPoints != nil {
			maxPoints = *g.MaxPoints
		}
		return &rummyGameRecord{
			ID:        g.ID,
			Title:     g.Title,
			CreatedAt: g.CreatedAt,
			Status:    string(g.Status),
			MaxPoints: maxPoints,
			Winner:    g.Winner,
			Winners:   joinWinners(g.Winners),
			Data:      data,
		}, nil
	case VariantChess:
		rec := &chessGameRecord{
			ID:        g.ID,
			Title:     g.Title,
			CreatedAt: g.CreatedAt,
			Status:    string(g.Status),
			Winner:    g.Winner,
			Winners:   joinWinners(g.Winners),
		}
		if len(g.Players) > 0 {
			rec.Player1ID, rec.Player1Name, rec.Player1Avatar = g.Players[0].ID, g.Players[0].Name, g.Players[0].Avatar
		}
		if len(g.Players) > 1 {
			rec.Player2ID, rec.Player2Name, rec.Player2Avatar = g.Players[1].ID, g.Players[1].Name, g.Players[1].Avatar
		}
		return rec, nil
	case VariantAce:
		data, err := encodeData(g)
		if err != nil {
			return nil, err
		}
		return &aceGameRecord{
			ID:        g.ID,
			Title:     g.Title,
			CreatedAt: g.CreatedAt,
			Status:    string(g.Status),
			Winner:    g.Winner,
			Winners:   joinWinners(g.Winners),
			Data:      data,
		}, nil
	}
	return nil, ErrInvalidVariant
}

// Winner ids are stored comma-joined; an empty column means a single winner
// or none.
func joinWinners(ids []string) string {
	return strings.Join(ids, ",")
}

func splitWinners(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func encodeData(g *Game) (string, error) {
	b, err := json.Marshal(gameData{Players: g.Players, Rounds: g.Rounds, History: g.History})
	if err != nil {
		return "", fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	return string(b), nil
}

func decodeData(id, data string, g *Game) error {
	if data == "" {
		return nil
	}
	var d gameData
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return fmt.Errorf("decode game %s: %w", id, err)
	}
	g.Players = d.Players
	g.Rounds = d.Rounds
	g.History = d.History
	return nil
}

func (rec rummyGameRecord) toGame() (*Game, error) {
	maxPoints := rec.MaxPoints
	g := &Game{
		ID:        rec.ID,
		Variant:   VariantRummy,
		Title:     rec.Title,
		CreatedAt: rec.CreatedAt,
		Status:    Status(rec.Status),
		MaxPoints: &maxPoints,
		Winner:    rec.Winner,
		Winners:   splitWinners(rec.Winners),
	}
	if err := decodeData(rec.ID, rec.Data, g); err != nil {
		return nil, err
	}
	g.EnsureHistory()
	return g, nil
}

func (rec chessGameRecord) toGame() *Game {
	return &Game{
		ID:        rec.ID,
		Variant:   VariantChess,
		Title:     rec.Title,
		CreatedAt: rec.CreatedAt,
		Status:    Status(rec.Status),
		Winner:    rec.Winner,
		Winners:   splitWinners(rec.Winners),
		Players: []GamePlayer{
			{ID: rec.Player1ID, Name: rec.Player1Name, Avatar: rec.Player1Avatar},
			{ID: rec.Player2ID, Name: rec.Player2Name, Avatar: rec.Player2Avatar},
		},
		Rounds:  []Round{},
		History: []Event{},
	}
}

func (rec aceGameRecord) toGame() (*Game, error) {
	g := &Game{
		ID:        rec.ID,
		Variant:   VariantAce,
		Title:     rec.Title,
		CreatedAt: rec.CreatedAt,
		Status:    Status(rec.Status),
		Winner:    rec.Winner,
		Winners:   splitWinners(rec.Winners),
	}
	if err := decodeData(rec.ID, rec.Data, g); err != nil {
		return nil, err
	}
	g.EnsureHistory()
	return g, nil
}
