package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"sitesync-media/internal/utils"
)

// CounterStore counts hits per key within a fixed window.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimiter rejects clients that exceed limit hits per window.
type RateLimiter struct {
	store   CounterStore
	prefix  string
	limit   int
	window  time.Duration
	message string
}

func NewRateLimiter(store CounterStore, prefix string, limit int, window time.Duration, message string) *RateLimiter {
	return &RateLimiter{store: store, prefix: prefix, limit: limit, window: window, message: message}
}

// Handler limits by client IP.
func (r *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("%s:%s", r.prefix, c.IP())
		count, err := r.store.Incr(c.Context(), key, r.window)
		if err != nil {
			return utils.JSONError(c, fiber.StatusInternalServerError, "rate limiter error")
		}
		if count > int64(r.limit) {
			return utils.JSONError(c, fiber.StatusTooManyRequests, r.message)
		}
		return c.Next()
	}
}

// RedisCounter backs the limiter with shared Redis counters.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		r.client.Expire(ctx, key, window)
	}
	return count, nil
}

// MemoryCounter is the single-process fallback when no Redis is configured.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*counterEntry
}

type counterEntry struct {
	count int64
	reset time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{entries: make(map[string]*counterEntry)}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	e, ok := m.entries[key]
	if !ok || now.After(e.reset) {
		e = &counterEntry{reset: now.Add(window)}
		m.entries[key] = e
	}
	e.count++
	return e.count, nil
}
