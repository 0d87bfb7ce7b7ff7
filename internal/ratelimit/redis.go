package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yojanamitra-core/server/internal/core/errx"
	logx "github.com/yojanamitra-core/server/pkg/logger"
)

// allowScript performs refill + check-and-decrement atomically on the Redis
// side, so concurrent Allow calls for the same key serialize there without
// any client-side locking.
//
// KEYS[1] bucket hash; ARGV: capacity, refill rate (tokens/sec), now
// (fractional seconds), key TTL (seconds).
var allowScript = redis.NewScript(`
local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local last = tonumber(redis.call('HGET', KEYS[1], 'last_refill'))
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

if tokens == nil then
  tokens = capacity
  last = now
end

local elapsed = now - last
if elapsed > 0 then
  tokens = math.min(capacity, tokens + elapsed * rate)
else
  now = last
end

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_refill', now)
redis.call('EXPIRE', KEYS[1], ARGV[4])
return allowed
`)

// RedisLimiter keeps buckets in the shared store so all instances observe the
// same token counts.
type RedisLimiter struct {
	rdb    redis.Cmdable
	limits Limits
}

func NewRedisLimiter(rdb redis.Cmdable, limits Limits) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limits: limits}
}

func bucketKey(subjectID string, class Class) string {
	return fmt.Sprintf("ratelimit:%s:%s", subjectID, class)
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, subjectID string, class Class) (bool, error) {
	if class == ClassHealth {
		return true, nil
	}
	capacity, ok := l.limits[class]
	if !ok || capacity <= 0 {
		return true, nil
	}

	now := float64(nowUnixMicro()) / 1e6
	// keep the bucket around for two refill windows past last touch
	ttlSeconds := int(refillWindow.Seconds()) * 2

	res, err := allowScript.Run(ctx, l.rdb,
		[]string{bucketKey(subjectID, class)},
		capacity, ratePerSecond(capacity), now, ttlSeconds,
	).Int()
	if err != nil {
		logx.Error().Err(err).Str("class", string(class)).Msg("rate limit check failed")
		return false, errx.WrapStore(err)
	}
	return res == 1, nil
}

var _ Limiter = (*RedisLimiter)(nil)
