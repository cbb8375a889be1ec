package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultAttemptLimit  = 20
	defaultAttemptWindow = time.Minute
)

// AttemptLimiter counts authentication attempts per key in fixed windows.
// Key format: auth_attempts:<key>:<window_index>
type AttemptLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewAttemptLimiter creates an AttemptLimiter wrapping the given Redis client.
// Non-positive limit or window fall back to 20 attempts per minute.
func NewAttemptLimiter(client *redis.Client, limit int, window time.Duration) *AttemptLimiter {
	if limit <= 0 {
		limit = defaultAttemptLimit
	}
	if window < time.Second {
		window = defaultAttemptWindow
	}
	return &AttemptLimiter{client: client, limit: int64(limit), window: window, now: time.Now}
}

// Allow registers one attempt for key and reports whether it is within the
// limit. When it is not, retryAfter is the time left in the current window.
func (l *AttemptLimiter) Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error) {
	now := l.now()
	windowSec := int64(l.window / time.Second)
	idx := now.Unix() / windowSec
	redisKey := fmt.Sprintf("auth_attempts:%s:%d", key, idx)

	var incr *redis.IntCmd
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("attempt limiter: %w", err)
	}

	if incr.Val() <= l.limit {
		return true, 0, nil
	}
	windowEnd := time.Unix((idx+1)*windowSec, 0)
	return false, windowEnd.Sub(now), nil
}
