package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/identity-sync-service/pkg/database"
	"github.com/redis/go-redis/v9"
)

// ErrRateLimited is returned by Allow when the window is exhausted
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitError carries the time until the oldest entry leaves the window
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, try again in %v", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	redis *database.Redis
	now   func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis, now: time.Now}
}

// allowScript trims the window, checks the count and records the request in one step.
// Returns {1, 0} when allowed and {0, oldestScore} when the window is full.
var allowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, window_start)
if redis.call('ZCARD', key) >= limit then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	return {0, tonumber(oldest[2]) or now}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, ARGV[5])
return {1, 0}
`)

// Allow records a request for key using a sliding window log.
// Returns a *RateLimitError when the limit is exceeded.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) error {
	now := r.now()

	result, err := allowScript.Run(ctx, r.redis.Client, []string{rateLimitKey(key)},
		now.UnixMilli(),
		now.Add(-window).UnixMilli(),
		limit,
		fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
		(window + time.Minute).Milliseconds(),
	).Int64Slice()
	if err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	if len(result) != 2 {
		return fmt.Errorf("unexpected rate limit reply: %v", result)
	}

	if result[0] == 1 {
		return nil
	}

	retryAfter := window - now.Sub(time.UnixMilli(result[1]))
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	return &RateLimitError{RetryAfter: retryAfter.Round(time.Second)}
}

// GetRemainingRequests returns the number of remaining requests allowed
func (r *RateLimiter) GetRemainingRequests(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	count, err := r.trim(ctx, rateLimitKey(key), r.now(), window)
	if err != nil {
		return 0, err
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}

// trim removes entries older than the window and returns how many remain
func (r *RateLimiter) trim(ctx context.Context, redisKey string, now time.Time, window time.Duration) (int64, error) {
	windowStart := now.Add(-window).UnixMilli()

	err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10)).Err()
	if err != nil {
		return 0, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	return count, nil
}

func rateLimitKey(key string) string {
	return "ratelimit:" + key
}
