package webhook_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trustkit/pkg/webhook"
)

const testKid = "kid-1"

func newKeyPair(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	pub, err := webhook.EncodePublicKey(&priv.PublicKey)
	require.NoError(t, err)
	return priv, pub
}

// singleLine mimics the registry, which strips newlines from PEM bodies.
func singleLine(pem string) string {
	return strings.ReplaceAll(pem, "\n", "")
}

func sign(t *testing.T, priv *ecdsa.PrivateKey, kid string, body []byte) string {
	t.Helper()

	header, err := webhook.Sign(priv, kid, body, webhook.DigestSHA1)
	require.NoError(t, err)
	return header
}

// stubFetcher serves keys from a map and counts lookups.
type stubFetcher struct {
	mu    sync.Mutex
	keys  map[string]string
	err   error
	calls atomic.Int32
}

func newStubFetcher(keys map[string]string) *stubFetcher {
	return &stubFetcher{keys: keys}
}

func (f *stubFetcher) FetchKey(_ context.Context, kid string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	key, ok := f.keys[kid]
	if !ok {
		return "", webhook.ErrKeyNotFound
	}
	return key, nil
}

// memoryStore is an in-process webhook.KeyStore.
type memoryStore struct {
	mu   sync.Mutex
	keys map[string]string
	gets atomic.Int32
	sets atomic.Int32
	fail error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{keys: make(map[string]string)}
}

func (s *memoryStore) Get(_ context.Context, kid string) (string, bool, error) {
	s.gets.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return "", false, s.fail
	}
	key, ok := s.keys[kid]
	return key, ok, nil
}

func (s *memoryStore) Set(_ context.Context, kid, pem string) error {
	s.sets.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.keys[kid] = pem
	return nil
}
