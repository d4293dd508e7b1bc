package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/trustkit/pkg/ratelimiter"
)

// takeScript refills and drains one bucket atomically. Bucket state is a
// hash of tokens (t) and last refill time in ms (r).
var takeScript = redis.NewScript(`
local tokens = tonumber(redis.call('HGET', KEYS[1], 't'))
local last = tonumber(redis.call('HGET', KEYS[1], 'r'))
local now = tonumber(ARGV[1])
local n = tonumber(ARGV[2])
local capacity = tonumber(ARGV[3])
local rate = tonumber(ARGV[4])
local interval = tonumber(ARGV[5])

if tokens == nil or last == nil then
	tokens = capacity
	last = now
end

local elapsed = math.floor((now - last) / interval)
if elapsed > 0 then
	if elapsed >= math.floor(capacity / rate) + 1 then
		tokens = capacity
		last = now
	else
		tokens = math.min(tokens + elapsed * rate, capacity)
		last = last + elapsed * interval
	end
end

local remaining = tokens - n
if remaining >= 0 then
	tokens = remaining
end

redis.call('HSET', KEYS[1], 't', tokens, 'r', last)
redis.call('PEXPIRE', KEYS[1], ARGV[6])
return {remaining, last + interval}
`)

// RateLimitStore is a ratelimiter.Store shared by every replica.
type RateLimitStore struct {
	db     redis.UniversalClient
	prefix string
}

// NewRateLimitStore keeps buckets under prefix+key.
func NewRateLimitStore(client redis.UniversalClient, prefix string) *RateLimitStore {
	return &RateLimitStore{db: client, prefix: prefix}
}

func (s *RateLimitStore) Take(ctx context.Context, key string, n int, now time.Time, cfg ratelimiter.Config) (int, time.Time, error) {
	interval := cfg.RefillInterval.Milliseconds()
	if interval <= 0 {
		interval = 1
	}
	// A bucket idle long enough to refill completely carries no state.
	ttl := (int64(cfg.Capacity/cfg.RefillRate) + 1) * interval

	res, err := takeScript.Run(ctx, s.db, []string{s.prefix + key},
		now.UnixMilli(), n, cfg.Capacity, cfg.RefillRate, interval, ttl,
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrRateLimitFailed, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, ErrRateLimitFailed
	}
	return int(res[0]), time.UnixMilli(res[1]), nil
}

func (s *RateLimitStore) Reset(ctx context.Context, key string) error {
	if err := s.db.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(ErrRateLimitFailed, err)
	}
	return nil
}
