package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trustkit/pkg/redis"
	"github.com/dmitrymomot/trustkit/pkg/webhook"
)

var _ webhook.KeyStore = (*redis.KeyStore)(nil)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestKeyStore(t *testing.T) {
	t.Parallel()

	mr, client := newMiniredis(t)
	store := redis.NewKeyStore(client, "keys:", time.Hour)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "kid-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "kid-1", "-----BEGIN PUBLIC KEY-----abc-----END PUBLIC KEY-----"))

	pem, ok, err := store.Get(ctx, "kid-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "-----BEGIN PUBLIC KEY-----abc-----END PUBLIC KEY-----", pem)

	assert.True(t, mr.Exists("keys:kid-1"))
	assert.Equal(t, time.Hour, mr.TTL("keys:kid-1"))

	require.NoError(t, store.Delete(ctx, "kid-1"))
	_, ok, err = store.Get(ctx, "kid-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyStore_Expiry(t *testing.T) {
	t.Parallel()

	mr, client := newMiniredis(t)
	store := redis.NewKeyStore(client, "keys:", time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "kid-1", "pem"))
	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Get(ctx, "kid-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyStore_EmptyInput(t *testing.T) {
	t.Parallel()

	mr, client := newMiniredis(t)
	store := redis.NewKeyStore(client, "keys:", 0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "", "pem"))
	require.NoError(t, store.Set(ctx, "kid", ""))
	assert.Empty(t, mr.Keys())

	_, ok, err := store.Get(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyStore_ServerDown(t *testing.T) {
	t.Parallel()

	mr, client := newMiniredis(t)
	store := redis.NewKeyStore(client, "keys:", time.Hour)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, ok, err := store.Get(ctx, "kid-1")
	assert.ErrorIs(t, err, redis.ErrKeyStoreFailed)
	assert.False(t, ok)

	assert.ErrorIs(t, store.Set(ctx, "kid-1", "pem"), redis.ErrKeyStoreFailed)
}

func TestKeyStoreWithConfig(t *testing.T) {
	t.Parallel()

	mr, client := newMiniredis(t)
	store := redis.NewKeyStoreWithConfig(client, redis.Config{KeyPrefix: "trustkit:", KeyTTL: 24 * time.Hour})

	require.NoError(t, store.Set(context.Background(), "kid-1", "pem"))
	assert.True(t, mr.Exists("trustkit:kid-1"))
	assert.Equal(t, 24*time.Hour, mr.TTL("trustkit:kid-1"))
}
