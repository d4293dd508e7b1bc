package webhook_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trustkit/pkg/webhook"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("WEBHOOK_REGISTRY_URL", "https://api.ebay.com/commerce/notification/v1")
	t.Setenv("WEBHOOK_CLIENT_ID", "client")
	t.Setenv("WEBHOOK_CLIENT_SECRET", "secret")
	t.Setenv("WEBHOOK_ACCEPTED_DIGESTS", "SHA1,SHA256")

	cfg, err := webhook.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.ebay.com/commerce/notification/v1", cfg.RegistryURL)
	assert.Equal(t, []string{"https://api.ebay.com/oauth/api_scope"}, cfg.Scopes)
	assert.Equal(t, webhook.DefaultCacheCapacity, cfg.CacheCapacity)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, webhook.DefaultSignatureHeader, cfg.SignatureHeader)
	assert.Equal(t, []string{"SHA1", "SHA256"}, cfg.AcceptedDigests)
	assert.EqualValues(t, webhook.DefaultMaxBodySize, cfg.MaxBodySize)
	assert.Len(t, cfg.VerifierOptions(), 1)
	assert.Len(t, cfg.MiddlewareOptions(), 2)
}
