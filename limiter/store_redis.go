package limiter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript refills and takes in one round trip so concurrent instances never double-spend.
// KEYS[1] bucket hash; ARGV: rate, capacity, n, now_ms, ttl_ms.
// Returns {allowed, remaining, retry_after_ms}.
var takeScript = redis.NewScript(`
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local n = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call("HMGET", KEYS[1], "tokens", "last")
local tokens = tonumber(state[1])
local last = tonumber(state[2])
if tokens == nil then
  tokens = capacity
  last = now
end

local elapsed = (now - last) / 1000
if elapsed > 0 then
  tokens = math.min(capacity, tokens + elapsed * rate)
end

local allowed = 0
local retry = 0
if tokens >= n then
  tokens = tokens - n
  allowed = 1
elseif rate > 0 then
  retry = math.ceil((n - tokens) / rate * 1000)
else
  retry = 3600000
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "last", tostring(now))
redis.call("PEXPIRE", KEYS[1], ttl)
return {allowed, math.floor(tokens), retry}
`)

// RedisStore shares buckets between every instance using the same Redis
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore does not own client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Take(ctx context.Context, key string, rule Rule, n int64, now time.Time) (*Result, error) {
	args := []any{
		strconv.FormatFloat(rule.Rate, 'f', -1, 64),
		rule.Capacity,
		n,
		now.UnixMilli(),
		idleTTL(rule).Milliseconds(),
	}
	vals, err := takeScript.Run(ctx, s.client, []string{key}, args...).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("limiter take %s: %w", key, err)
	}
	if len(vals) != 3 {
		return nil, fmt.Errorf("limiter take %s: unexpected reply %v", key, vals)
	}
	return &Result{
		Allowed:    vals[0] == 1,
		Remaining:  vals[1],
		Limit:      rule.Capacity,
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

func (s *RedisStore) Close() error { return nil }
