package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxFailures = 5
	defaultWindow      = 15 * time.Minute
)

// LoginLimiter counts failed logins per key inside a fixed window.
// Key format: login_failures:<key>
type LoginLimiter struct {
	client      redis.Cmdable
	maxFailures int64
	window      time.Duration
}

// NewLoginLimiter wraps client. maxFailures <= 0 and window <= 0 fall back to
// 5 failures per 15 minutes.
func NewLoginLimiter(client redis.Cmdable, maxFailures int, window time.Duration) *LoginLimiter {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginLimiter{client: client, maxFailures: int64(maxFailures), window: window}
}

// Blocked reports whether key has used up its allowed failures: once
// maxFailures failures are recorded in the window, further attempts are
// refused until it expires.
func (l *LoginLimiter) Blocked(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(key)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("login limiter get: %w", err)
	}
	return n >= l.maxFailures, nil
}

// recordFailureScript increments the counter and sets the window TTL in one
// step. A key found without a TTL gets one as well, so a counter can never
// outlive its window.
const recordFailureScript = `
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`

// RecordFailure increments the counter. The window starts at the first failure.
func (l *LoginLimiter) RecordFailure(ctx context.Context, key string) error {
	err := l.client.Eval(ctx, recordFailureScript, []string{l.key(key)}, l.window.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("login limiter record: %w", err)
	}
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("login limiter reset: %w", err)
	}
	return nil
}

func (l *LoginLimiter) key(key string) string {
	return "login_failures:" + key
}
