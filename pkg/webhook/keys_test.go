package webhook_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trustkit/pkg/webhook"
)

func TestNormalizePEM(t *testing.T) {
	t.Parallel()

	_, wrapped := newKeyPair(t)

	t.Run("single line is rewrapped", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, wrapped, webhook.NormalizePEM(singleLine(wrapped)))
	})

	t.Run("already wrapped is stable", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, wrapped, webhook.NormalizePEM(wrapped))
		assert.Equal(t, wrapped, webhook.NormalizePEM(webhook.NormalizePEM(wrapped)))
	})

	t.Run("lines are at most 64 characters", func(t *testing.T) {
		t.Parallel()
		for _, line := range strings.Split(webhook.NormalizePEM(singleLine(wrapped)), "\n") {
			assert.LessOrEqual(t, len(line), 64)
		}
	})

	t.Run("crlf and stray spaces", func(t *testing.T) {
		t.Parallel()
		messy := strings.ReplaceAll(wrapped, "\n", "\r\n  ")
		assert.Equal(t, wrapped, webhook.NormalizePEM(messy))
	})

	t.Run("without markers unchanged", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "not a key", webhook.NormalizePEM("not a key"))
		assert.Equal(t, "-----BEGIN PUBLIC KEY-----abc", webhook.NormalizePEM("-----BEGIN PUBLIC KEY-----abc"))
	})
}

func TestParsePublicKey(t *testing.T) {
	t.Parallel()

	priv, wrapped := newKeyPair(t)

	for name, input := range map[string]string{"wrapped": wrapped, "single line": singleLine(wrapped)} {
		pub, err := webhook.ParsePublicKey(input)
		require.NoError(t, err, name)
		assert.True(t, priv.PublicKey.Equal(pub), name)
	}

	_, err := webhook.ParsePublicKey("garbage")
	assert.ErrorIs(t, err, webhook.ErrInvalidPublicKey)

	_, err = webhook.ParsePublicKey("-----BEGIN PUBLIC KEY-----AAAA-----END PUBLIC KEY-----")
	assert.ErrorIs(t, err, webhook.ErrInvalidPublicKey)
}

func TestParsePrivateKey(t *testing.T) {
	t.Parallel()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	sec1, err := webhook.EncodePrivateKey(priv)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	pkcs8 := string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))

	for name, input := range map[string]string{"sec1": sec1, "pkcs8": pkcs8} {
		parsed, err := webhook.ParsePrivateKey(input)
		require.NoError(t, err, name)
		assert.True(t, priv.Equal(parsed), name)
	}

	_, err = webhook.ParsePrivateKey("garbage")
	assert.ErrorIs(t, err, webhook.ErrInvalidPrivateKey)

	_, pub := newKeyPair(t)
	_, err = webhook.ParsePrivateKey(pub)
	assert.ErrorIs(t, err, webhook.ErrInvalidPrivateKey)
}
