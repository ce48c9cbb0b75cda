package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thesrcielos/ScoreBoard/internal/common/clock"
	"github.com/thesrcielos/ScoreBoard/internal/config"
)

// Decision is the outcome of one request against a client's budget.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetIn is how long the client stays blocked. Zero when allowed.
	ResetIn time.Duration
}

// ResetMinutes rounds ResetIn up to whole minutes.
func (d Decision) ResetMinutes() int {
	if d.ResetIn <= 0 {
		return 0
	}
	return int((d.ResetIn + time.Minute - 1) / time.Minute)
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter counts requests per key in a fixed window. A key that goes
// over the limit is blocked for the configured duration; both windows expire
// through key TTLs.
// countRequest increments the window counter and starts its expiry in one
// step. A counter found without a TTL gets one as well.
var countRequest = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

type RedisLimiter struct {
	db  *redis.Client
	cfg config.RateLimitConfig
}

func NewRedisLimiter(db *redis.Client, cfg config.RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{db: db, cfg: cfg}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	blockKey := fmt.Sprintf("ratelimit:block:%s", key)
	countKey := fmt.Sprintf("ratelimit:count:%s", key)

	ttl, err := r.db.PTTL(ctx, blockKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("check block for %s: %w", key, err)
	}
	if ttl > 0 {
		return r.denied(ttl), nil
	}

	n, err := countRequest.Run(ctx, r.db, []string{countKey}, r.cfg.Window.Milliseconds()).Int64()
	if err != nil {
		return Decision{}, fmt.Errorf("count request for %s: %w", key, err)
	}

	count := int(n)
	if count > r.cfg.Requests {
		pipe := r.db.TxPipeline()
		pipe.Set(ctx, blockKey, 1, r.cfg.Block)
		pipe.Del(ctx, countKey)
		if _, err := pipe.Exec(ctx); err != nil {
			return Decision{}, fmt.Errorf("block %s: %w", key, err)
		}
		return r.denied(r.cfg.Block), nil
	}

	return Decision{Allowed: true, Limit: r.cfg.Requests, Remaining: r.cfg.Requests - count}, nil
}

func (r *RedisLimiter) denied(resetIn time.Duration) Decision {
	return Decision{Limit: r.cfg.Requests, ResetIn: resetIn}
}

type window struct {
	start        time.Time
	count        int
	blockedUntil time.Time
}

// MemoryLimiter applies the same policy as RedisLimiter inside one process.
// Stale entries are dropped by Sweep.
type MemoryLimiter struct {
	cfg   config.RateLimitConfig
	clock clock.Clock

	mu      sync.Mutex
	windows map[string]*window
}

func NewMemoryLimiter(cfg config.RateLimitConfig, clk clock.Clock) *MemoryLimiter {
	if clk == nil {
		clk = &clock.DefaultClock{}
	}
	return &MemoryLimiter{cfg: cfg, clock: clk, windows: make(map[string]*window)}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || (now.Sub(w.start) >= m.cfg.Window && !now.Before(w.blockedUntil)) {
		w = &window{start: now}
		m.windows[key] = w
	}
	if now.Before(w.blockedUntil) {
		return Decision{Limit: m.cfg.Requests, ResetIn: w.blockedUntil.Sub(now)}, nil
	}

	w.count++
	if w.count > m.cfg.Requests {
		w.blockedUntil = now.Add(m.cfg.Block)
		return Decision{Limit: m.cfg.Requests, ResetIn: m.cfg.Block}, nil
	}
	return Decision{Allowed: true, Limit: m.cfg.Requests, Remaining: m.cfg.Requests - w.count}, nil
}

// Sweep removes entries whose window and block have both ended.
func (m *MemoryLimiter) Sweep() int {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, w := range m.windows {
		if now.Sub(w.start) >= m.cfg.Window && !now.Before(w.blockedUntil) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (m *MemoryLimiter) Run(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.Sweep(); removed > 0 {
				logger.Debug("ratelimit_swept", slog.Int("removed", removed))
			}
		}
	}
}
