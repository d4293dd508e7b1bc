package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyStore keeps webhook public keys in Redis so that every replica shares
// one copy and a restart does not hit the key registry again.
type KeyStore struct {
	db     redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewKeyStore wraps client. Keys are stored under prefix+kid and expire
// after ttl; a zero ttl keeps them until evicted by Redis.
func NewKeyStore(client redis.UniversalClient, prefix string, ttl time.Duration) *KeyStore {
	return &KeyStore{
		db:     client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// NewKeyStoreWithConfig takes the prefix and TTL from cfg.
func NewKeyStoreWithConfig(client redis.UniversalClient, cfg Config) *KeyStore {
	return NewKeyStore(client, cfg.KeyPrefix, cfg.KeyTTL)
}

// Get returns the PEM stored for kid. A missing key is reported as ok=false
// with a nil error.
func (s *KeyStore) Get(ctx context.Context, kid string) (string, bool, error) {
	if kid == "" {
		return "", false, nil
	}
	val, err := s.db.Get(ctx, s.prefix+kid).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Join(ErrKeyStoreFailed, err)
	}
	return val, true, nil
}

// Set stores pem for kid. Empty kids and values are ignored.
func (s *KeyStore) Set(ctx context.Context, kid, pem string) error {
	if kid == "" || pem == "" {
		return nil
	}
	if err := s.db.Set(ctx, s.prefix+kid, pem, s.ttl).Err(); err != nil {
		return errors.Join(ErrKeyStoreFailed, err)
	}
	return nil
}

// Delete drops the stored key for kid, e.g. after the provider rotates it.
func (s *KeyStore) Delete(ctx context.Context, kid string) error {
	if kid == "" {
		return nil
	}
	if err := s.db.Del(ctx, s.prefix+kid).Err(); err != nil {
		return errors.Join(ErrKeyStoreFailed, err)
	}
	return nil
}
