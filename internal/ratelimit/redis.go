package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// checkScript runs the whole transition inside Redis so concurrent submissions
// from several instances cannot both slip under the limit.
//
// KEYS[1] record hash; ARGV[1] now (ms); ARGV[2] window (ms); ARGV[3] max attempts.
// Returns {allowed, count, elapsed_ms}.
var checkScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local rec = redis.call('HMGET', KEYS[1], 'count', 'start')
local count = tonumber(rec[1])
local start = tonumber(rec[2])
if count == nil or start == nil or now - start >= window then
  redis.call('HSET', KEYS[1], 'count', 1, 'start', ARGV[1])
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
  return {1, 1, 0}
end
if count >= max then
  return {0, count, now - start}
end
count = redis.call('HINCRBY', KEYS[1], 'count', 1)
return {1, count, now - start}
`)

// RedisLimiter shares records across every instance pointed at the same Redis.
// Expired records are evicted by the key TTL, so no sweep is needed.
type RedisLimiter struct {
	client *redis.Client
	cfg    Config
	now    Clock
	prefix string
}

// NewRedisLimiter creates a RedisLimiter. A nil clock means time.Now.
func NewRedisLimiter(client *redis.Client, cfg Config, clock Clock) (*RedisLimiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = time.Now
	}
	return &RedisLimiter{
		client: client,
		cfg:    cfg,
		now:    clock,
		prefix: "ratelimit:",
	}, nil
}

func (l *RedisLimiter) key(identifier string) string {
	return l.prefix + identifier
}

// Check applies the window rules to identifier in one round trip.
func (l *RedisLimiter) Check(ctx context.Context, identifier string) (Decision, error) {
	nowMs := l.now().UnixMilli()
	windowMs := l.cfg.Window.Milliseconds()

	res, err := checkScript.Run(ctx, l.client, []string{l.key(identifier)}, nowMs, windowMs, l.cfg.MaxAttempts).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("redis rate limit check failed: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("redis rate limit check returned %d values", len(res))
	}

	count := int(res[1])
	if res[0] == 1 {
		return Decision{Allowed: true, Count: count}, nil
	}
	elapsed := time.Duration(res[2]) * time.Millisecond
	return denied(count, elapsed, l.cfg.Window), nil
}
