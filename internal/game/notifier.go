package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	MessageGameUpdated = "GAME_UPDATED"

	updatesChannel = "game_updates"
)

type GameMessage struct {
	Type    string `json:"type"`
	GameID  string `json:"gameId"`
	Payload *Game  `json:"payload"`
}

// Deliver hands a message to the viewers connected to this instance.
type Deliver func(msg GameMessage)

// RedisGameNotifier fans game updates out through redis pub/sub so that every
// instance can push them to its own websocket viewers.
type RedisGameNotifier struct {
	db      *redis.Client
	deliver Deliver
	logger  *slog.Logger
}

func NewRedisGameNotifier(db *redis.Client, deliver Deliver, logger *slog.Logger) *RedisGameNotifier {
	return &RedisGameNotifier{db: db, deliver: deliver, logger: logger}
}

func (r *RedisGameNotifier) GameUpdated(ctx context.Context, g *Game) {
	payload, err := json.Marshal(GameMessage{Type: MessageGameUpdated, GameID: g.ID, Payload: g})
	if err != nil {
		r.logger.Error("game_update_encode_failed", slog.String("game_id", g.ID), slog.Any("error", err))
		return
	}
	if err := r.db.Publish(ctx, updatesChannel, payload).Err(); err != nil {
		r.logger.Warn("game_update_publish_failed", slog.String("game_id", g.ID), slog.Any("error", err))
	}
}

// Subscribe starts relaying published updates to deliver until ctx is done.
func (r *RedisGameNotifier) Subscribe(ctx context.Context) error {
	sub := r.db.Subscribe(ctx, updatesChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("error subscribing to %s: %w", updatesChannel, err)
	}

	r.logger.Info("game_updates_subscribed", slog.String("channel", updatesChannel))
	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				r.receive(msg.Payload)
			}
		}
	}()
	return nil
}

func (r *RedisGameNotifier) receive(encoded string) {
	var msg GameMessage
	if err := json.Unmarshal([]byte(encoded), &msg); err != nil {
		r.logger.Warn("game_update_decode_failed", slog.Any("error", err))
		return
	}
	if r.deliver != nil {
		r.deliver(msg)
	}
}

// LocalNotifier delivers updates in-process when redis is not configured.
type LocalNotifier struct {
	deliver Deliver
}

func NewLocalNotifier(deliver Deliver) *LocalNotifier {
	return &LocalNotifier{deliver: deliver}
}

func (l *LocalNotifier) GameUpdated(_ context.Context, g *Game) {
	if l.deliver == nil {
		return
	}
	l.deliver(GameMessage{Type: MessageGameUpdated, GameID: g.ID, Payload: g})
}

type NopNotifier struct{}

func (NopNotifier) GameUpdated(context.Context, *Game) {}
