package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thesrcielos/ScoreBoard/api"
	"github.com/thesrcielos/ScoreBoard/internal/config"
	"github.com/thesrcielos/ScoreBoard/internal/game"
	"github.com/thesrcielos/ScoreBoard/internal/logging"
	"github.com/thesrcielos/ScoreBoard/internal/player"
	"github.com/thesrcielos/ScoreBoard/internal/ratelimit"
	"github.com/thesrcielos/ScoreBoard/internal/user"
	"github.com/thesrcielos/ScoreBoard/pkg/db"
	"github.com/thesrcielos/ScoreBoard/websocket"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server_exit", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log, "scoreboard.log")
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	gdb, err := db.Open(cfg.DB)
	if err != nil {
		return err
	}
	rdb, err := db.OpenRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	playerStore := player.NewGormStore(gdb)
	userRepo := user.NewUserRepository(gdb)
	gameRepo := game.NewGormRepository(gdb)
	if err := migrate(playerStore, userRepo, gameRepo); err != nil {
		return err
	}

	var ledger *game.LedgerService
	sequence, notifier, limiter := redisBacked(ctx, rdb, cfg, logger, func(msg game.GameMessage) {
		ledger.Apply(msg.Payload)
		websocket.DeliverGameMessage(msg)
	})

	ledger, err = game.NewLedgerService(&game.Config{
		Repository: gameRepo,
		Players:    playerStore,
		Sequence:   sequence,
		Notifier:   notifier,
		Location:   loc,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	if err := ledger.Load(ctx); err != nil {
		return err
	}
	if sub, ok := notifier.(*game.RedisGameNotifier); ok {
		if err := sub.Subscribe(ctx); err != nil {
			return err
		}
	}

	tokens := user.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, nil)
	e := api.NewServer(api.Deps{
		Users:        user.NewUserService(userRepo, playerStore, tokens, cfg.Admin, logger),
		Players:      player.NewPlayerService(playerStore, logger),
		Ledger:       ledger,
		Tokens:       tokens,
		Limiter:      limiter,
		Logger:       logger,
		SecureCookie: cfg.SecureCookie,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("server_shutdown_failed", slog.Any("error", err))
		}
	}()

	logger.Info("server_starting", slog.String("port", cfg.Port))
	if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server_stopped")
	return nil
}

type migrator interface {
	AutoMigrate() error
}

func migrate(stores ...migrator) error {
	for _, s := range stores {
		if err := s.AutoMigrate(); err != nil {
			return err
		}
	}
	return nil
}

// redisBacked picks the shared implementations when redis is configured and
// the in-process ones otherwise. Updates published by any instance, this one
// included, reach relay once the redis notifier is subscribed.
func redisBacked(ctx context.Context, rdb *redis.Client, cfg *config.Config, logger *slog.Logger, relay game.Deliver) (game.Sequence, game.Notifier, ratelimit.Limiter) {
	if rdb == nil {
		limiter := ratelimit.NewMemoryLimiter(cfg.RateLimit, nil)
		go limiter.Run(ctx, 2*time.Minute, logger)
		return game.NewMemorySequence(), game.NewLocalNotifier(websocket.DeliverGameMessage), limiter
	}
	return game.NewRedisSequence(rdb), game.NewRedisGameNotifier(rdb, relay, logger), ratelimit.NewRedisLimiter(rdb, cfg.RateLimit)
}
