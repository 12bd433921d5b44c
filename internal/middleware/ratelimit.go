package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key in a fixed window.  Two backings exist:
// MemoryLimiter for a single instance and RedisLimiter when counters must be
// shared across instances.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// sweepThreshold bounds the in-memory entry map; once it grows past this
// many keys, expired entries are swept on the next insert.
const sweepThreshold = 10000

type memoryEntry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a mutex-guarded fixed-window counter map.  State is
// process-local: it is lost on restart and not shared between instances.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{entries: make(map[string]*memoryEntry)}
}

func (m *MemoryLimiter) Check(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	e, ok := m.entries[key]
	if !ok || now.After(e.resetAt) {
		if len(m.entries) > sweepThreshold {
			m.sweep(now)
		}
		e = &memoryEntry{count: 1, resetAt: now.Add(window)}
		m.entries[key] = e
		return Decision{Allowed: true, Remaining: limit - 1, ResetAt: e.resetAt}, nil
	}
	if e.count >= limit {
		return Decision{Allowed: false, Remaining: 0, ResetAt: e.resetAt}, nil
	}
	e.count++
	return Decision{Allowed: true, Remaining: limit - e.count, ResetAt: e.resetAt}, nil
}

// sweep drops every entry whose window already elapsed.  Caller holds mu.
func (m *MemoryLimiter) sweep(now time.Time) {
	for k, e := range m.entries {
		if now.After(e.resetAt) {
			delete(m.entries, k)
		}
	}
}

// RedisLimiter implements the same fixed-window semantics on a shared Redis
// counter so that multiple instances see one budget.  The INCR and the
// expiry are applied in a single script to avoid windows without a TTL.
type RedisLimiter struct {
	rdb    *redis.Client
	script *redis.Script
}

func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{
		rdb: rdb,
		script: redis.NewScript(`
			local count = redis.call('INCR', KEYS[1])
			if count == 1 then
				redis.call('PEXPIRE', KEYS[1], ARGV[1])
			end
			local ttl = redis.call('PTTL', KEYS[1])
			return { count, ttl }
		`),
	}
}

func (r *RedisLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	vals, err := r.script.Run(ctx, r.rdb, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return Decision{}, err
	}
	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 2 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script result %#v", vals)
	}
	count := asInt64(arr[0])
	ttlMs := asInt64(arr[1])
	resetAt := time.Now().Add(time.Duration(ttlMs) * time.Millisecond)

	if count > int64(limit) {
		return Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}
	return Decision{Allowed: true, Remaining: limit - int(count), ResetAt: resetAt}, nil
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// RateLimit returns an Echo middleware that applies the given budget to one
// capability.  Authenticated requests are keyed by user ID, everything else
// by caller IP.  When the limiter backend itself fails the request is let
// through: availability over strictness.
func RateLimit(l Limiter, prefix, capability string, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(prefix, capability, c)
			d, err := l.Check(c.Request().Context(), key, limit, window)
			if err != nil {
				c.Logger().Warnf("ratelimit: check failed for key=%s: %v", key, err)
				return next(c)
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				secs := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
				if secs < 0 {
					secs = 0
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"success": false,
					"error":   "rate limit exceeded, please slow down",
				})
			}
			return next(c)
		}
	}
}

func rateKey(prefix, capability string, c echo.Context) string {
	if uid := CurrentUserID(c); uid != 0 {
		return fmt.Sprintf("%s:%s:user:%d", prefix, capability, uid)
	}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return fmt.Sprintf("%s:%s:ip:%s", prefix, capability, ip)
}
