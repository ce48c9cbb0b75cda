package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const sequenceTTL = 48 * time.Hour

// RedisSequence keeps one counter per calendar day so instances sharing a
// redis never hand out the same number.
type RedisSequence struct {
	db *redis.Client
}

func NewRedisSequence(db *redis.Client) *RedisSequence {
	return &RedisSequence{db: db}
}

// Next seeds the day's counter with the number of games already created that
// day when the key is missing, then increments it.
func (r *RedisSequence) Next(ctx context.Context, day string, seed int) (int, error) {
	key := fmt.Sprintf("games:seq:%s", day)

	pipe := r.db.TxPipeline()
	pipe.SetNX(ctx, key, seed, sequenceTTL)
	incr := pipe.Incr(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("next game number for %s: %w", day, err)
	}
	return int(incr.Val()), nil
}

// MemorySequence is the single-instance counterpart of RedisSequence.
type MemorySequence struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemorySequence() *MemorySequence {
	return &MemorySequence{counts: make(map[string]int)}
}

func (m *MemorySequence) Next(_ context.Context, day string, seed int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.counts[day]
	if !ok {
		// only today's counter is ever needed again
		clear(m.counts)
		n = seed
	}
	if n < seed {
		n = seed
	}
	n++
	m.counts[day] = n
	return n, nil
}
