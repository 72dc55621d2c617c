package ratelimit

import (
	"context"
	"time"

	"github.com/phishsim/gateway/pkg/redis"
	"github.com/pkg/errors"
)

// consumeScript increments the window counter and sets its expiry on first
// use. Running both in one script keeps check-and-consume atomic across
// instances sharing the redis.
const consumeScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`

// RedisLimiter is a fixed-window counter backed by a shared redis, so every
// gateway instance draws from the same per-key budget.
type RedisLimiter struct {
	adapter redis.RedisAdapter
	points  int
	window  time.Duration
}

func NewRedisLimiter(adapter redis.RedisAdapter, points int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		adapter: adapter,
		points:  points,
		window:  window,
	}
}

func (l *RedisLimiter) Allow(key string) (bool, error) {
	res, err := l.adapter.Eval(
		context.Background(),
		consumeScript,
		[]string{"ratelimit:" + key},
		l.window.Milliseconds(),
	)
	if err != nil {
		return false, errors.Wrap(err, "rate limit consume failed")
	}

	current, ok := res.(int64)
	if !ok {
		return false, errors.Errorf("unexpected rate limit script result %T", res)
	}
	return current <= int64(l.points), nil
}
