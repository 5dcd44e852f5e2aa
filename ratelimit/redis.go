package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisScript implements the same token-bucket algorithm as Bucket but
// atomically inside Redis, for a connector process shared across
// multiple game-core instances (grounded on
// core/infrastructure/realtime/user_router.go's go-redis usage).
// cmd/mahjongd wires it as the Controller's admission-ticket join limiter
// only when redis.addr is configured; per-connection message throttling
// always uses the in-memory Bucket.
const redisScript = `
local tokens_key = KEYS[1]
local ts_key = KEYS[2]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local last_tokens = tonumber(redis.call("get", tokens_key))
if last_tokens == nil then last_tokens = burst end
local last_ts = tonumber(redis.call("get", ts_key))
if last_ts == nil then last_ts = now end

local elapsed = math.max(0, now - last_ts)
local filled = math.min(burst, last_tokens + elapsed * rate)
local allowed = filled >= 1
local new_tokens = filled
if allowed then new_tokens = filled - 1 end

redis.call("set", tokens_key, new_tokens, "EX", 3600)
redis.call("set", ts_key, now, "EX", 3600)
return allowed and 1 or 0
`

type RedisBucket struct {
	client *redis.Client
	key    string
	rate   float64
	burst  int
}

func NewRedisBucket(client *redis.Client, key string, ratePerSecond float64, burst int) *RedisBucket {
	return &RedisBucket{client: client, key: key, rate: ratePerSecond, burst: burst}
}

func (b *RedisBucket) Consume(ctx context.Context) (bool, error) {
	now := float64(time.Now().UnixMilli()) / 1000.0
	res, err := b.client.Eval(ctx, redisScript, []string{b.key + ":t", b.key + ":ts"}, b.rate, b.burst, now).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}
