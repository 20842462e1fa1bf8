package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisGrace keeps a window's key around a little past its end.
const redisGrace = time.Second

var redisIncrScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter implements a fixed-window rate limiter backed by Redis, so
// every replica pointed at the same Redis shares one budget.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
}

func NewRedisLimiter(client redis.Scripter, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: strings.TrimSpace(prefix)}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, rule Rule, now time.Time) (Result, error) {
	if rule.Count <= 0 || rule.Period <= 0 || key == "" || l == nil || l.client == nil {
		return Result{Allowed: true}, nil
	}
	window, reset := rule.window(now)
	ttl := (rule.Period + redisGrace).Milliseconds()

	res, err := redisIncrScript.Run(ctx, l.client, []string{l.buildKey(key, window)}, ttl).Result()
	if err != nil {
		return Result{}, err
	}
	count, ok := res.(int64)
	if !ok {
		return Result{}, errors.New("rate limit redis: unexpected response type")
	}

	if count > int64(rule.Count) {
		return Result{Allowed: false, Limit: rule.Count, Remaining: 0, Reset: reset}, nil
	}
	return Result{Allowed: true, Limit: rule.Count, Remaining: rule.Count - int(count), Reset: reset}, nil
}

func (l *RedisLimiter) buildKey(key string, window int64) string {
	w := strconv.FormatInt(window, 10)
	if l.prefix == "" {
		return key + ":" + w
	}
	return l.prefix + ":" + key + ":" + w
}
