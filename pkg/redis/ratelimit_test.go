package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trustkit/pkg/ratelimiter"
	"github.com/dmitrymomot/trustkit/pkg/redis"
)

var _ ratelimiter.Store = (*redis.RateLimitStore)(nil)

func TestRateLimitStore(t *testing.T) {
	t.Parallel()

	mr, client := newMiniredis(t)
	store := redis.NewRateLimitStore(client, "rl:")
	cfg := ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Second}
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	remaining, resetAt, err := store.Take(ctx, "198.51.100.1", 1, now, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, now.Add(time.Second), resetAt)

	remaining, _, err = store.Take(ctx, "198.51.100.1", 1, now, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	remaining, _, err = store.Take(ctx, "198.51.100.1", 1, now, cfg)
	require.NoError(t, err)
	assert.Equal(t, -1, remaining)

	remaining, resetAt, err = store.Take(ctx, "198.51.100.1", 1, now.Add(1500*time.Millisecond), cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, now.Add(2*time.Second), resetAt)

	assert.True(t, mr.Exists("rl:198.51.100.1"))
	assert.Equal(t, 3*time.Second, mr.TTL("rl:198.51.100.1"))

	require.NoError(t, store.Reset(ctx, "198.51.100.1"))
	assert.False(t, mr.Exists("rl:198.51.100.1"))
}

func TestRateLimitStore_WithLimiter(t *testing.T) {
	t.Parallel()

	_, client := newMiniredis(t)
	now := time.Unix(1_700_000_000, 0)
	l, err := ratelimiter.New(
		redis.NewRateLimitStore(client, "rl:"),
		ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Minute},
		ratelimiter.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	for range 3 {
		res, err := l.Allow(context.Background(), "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
	}
	res, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, time.Minute, res.RetryAfter(now))
}

func TestRateLimitStore_ServerDown(t *testing.T) {
	t.Parallel()

	mr, client := newMiniredis(t)
	mr.Close()

	_, _, err := redis.NewRateLimitStore(client, "rl:").Take(context.Background(), "k", 1,
		time.Now(), ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second})
	assert.ErrorIs(t, err, redis.ErrRateLimitFailed)
}
