package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements sliding window rate limiting using Redis, shared by
// every replica pointing at the same instance
// ⭐ SSOT: 분산 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	prefix string
	cfg    RateLimitConfig
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Key    string        // unique identifier, e.g. "refresh"
	Limit  int           // maximum requests allowed
	Window time.Duration // time window
}

// slidingWindow trims the window, counts and admits atomically
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local count = redis.call('ZCARD', key)

	if count < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1}
	else
		return {0, 0}
	end
`)

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, prefix string, cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
		cfg:    cfg,
	}
}

// AllowN checks if a request is allowed under the rate limit.
// Returns (allowed, remaining, error).
func (r *RateLimiter) AllowN(ctx context.Context) (bool, int, error) {
	if !r.client.Enabled() {
		// Redis 비활성화 시 모두 허용
		return true, r.cfg.Limit, nil
	}

	key := fmt.Sprintf("%s:ratelimit:%s", r.prefix, r.cfg.Key)
	now := time.Now()
	nowMs := now.UnixMilli()
	windowStart := nowMs - r.cfg.Window.Milliseconds()
	member := fmt.Sprintf("%d", now.UnixNano())

	result, err := slidingWindow.Run(ctx, r.client.Redis(), []string{key},
		nowMs,
		windowStart,
		r.cfg.Limit,
		r.cfg.Window.Milliseconds(),
		member,
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script failed: %w", err)
	}

	return result[0] == 1, int(result[1]), nil
}

// Allow reports whether one more request fits the window. Redis errors deny.
func (r *RateLimiter) Allow(ctx context.Context) bool {
	allowed, _, err := r.AllowN(ctx)
	return err == nil && allowed
}

// RefreshRateLimit is the manual refresh budget per minute
func RefreshRateLimit(perMinute int) RateLimitConfig {
	return RateLimitConfig{
		Key:    "refresh",
		Limit:  perMinute,
		Window: time.Minute,
	}
}
