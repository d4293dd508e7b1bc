package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/trustkit/pkg/cache"
	"github.com/dmitrymomot/trustkit/pkg/logger"
)

const (
	tokenPath          = "/oauth2/token"
	publicKeyPath      = "/public_key/"
	maxKeyResponseSize = 64 << 10
	registryAlgorithm  = "ECDSA"
)

// KeyStore is a shared second-level key cache, consulted after the
// in-memory LRU and before the registry. See pkg/redis for an implementation.
type KeyStore interface {
	Get(ctx context.Context, kid string) (string, bool, error)
	Set(ctx context.Context, kid, pem string) error
}

// RegistryClient fetches public keys from the provider's key registry using
// an OAuth2 client-credentials token. Successful lookups are cached in an
// LRU keyed by kid; concurrent misses for the same kid share one request.
// Negative results are never cached.
type RegistryClient struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	keys    *cache.LRUCache[string, string]
	store   KeyStore
	digests map[string]bool
	group   singleflight.Group
	logger  *slog.Logger
	metrics *Metrics
}

// RegistryOption configures a RegistryClient.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	httpClient *http.Client
	keys       *cache.LRUCache[string, string]
	store      KeyStore
	logger     *slog.Logger
	metrics    *Metrics
}

// WithHTTPClient sets the client used for both the token and the key
// requests. Its Transport is reused; the configured timeout still applies.
func WithHTTPClient(c *http.Client) RegistryOption {
	return func(o *registryOptions) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithKeyCache injects the in-memory key cache, replacing the one sized by
// Config.CacheCapacity.
func WithKeyCache(keys *cache.LRUCache[string, string]) RegistryOption {
	return func(o *registryOptions) {
		if keys != nil {
			o.keys = keys
		}
	}
}

// WithKeyStore adds a second-level cache shared between processes.
func WithKeyStore(s KeyStore) RegistryOption {
	return func(o *registryOptions) {
		o.store = s
	}
}

// WithRegistryLogger sets the logger for registry failures.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(o *registryOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegistryMetrics records every key lookup in m.
func WithRegistryMetrics(m *Metrics) RegistryOption {
	return func(o *registryOptions) {
		o.metrics = m
	}
}

// NewRegistryClient validates cfg and builds a client for its registry.
func NewRegistryClient(cfg Config, opts ...RegistryOption) (*RegistryClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	capacity := cfg.CacheCapacity
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}

	o := &registryOptions{logger: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	if o.keys == nil {
		o.keys = cache.NewLRUCache[string, string](capacity)
	}

	base := &http.Client{Timeout: timeout}
	if o.httpClient != nil {
		base.Transport = o.httpClient.Transport
	}

	baseURL := strings.TrimRight(cfg.RegistryURL, "/")
	credentials := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     baseURL + tokenPath,
		Scopes:       cfg.Scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	// The token source keeps this context for every refresh; it only carries the client.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	return &RegistryClient{
		baseURL: baseURL,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: credentials.TokenSource(tokenCtx),
				Base:   base.Transport,
			},
		},
		keys:    o.keys,
		store:   o.store,
		digests: acceptedDigests(cfg.AcceptedDigests),
		logger:  o.logger.With(logger.Component("key_registry")),
		metrics: o.metrics,
	}, nil
}

// FetchKey returns the PEM public key for kid. Every failure to obtain a
// usable key, including transport errors, is reported as ErrKeyNotFound
// (joined with the cause) and logged.
func (c *RegistryClient) FetchKey(ctx context.Context, kid string) (string, error) {
	if kid == "" {
		return "", ErrKeyNotFound
	}
	if key, ok := c.keys.Get(kid); ok {
		c.metrics.RecordKeyFetch(SourceCache)
		return key, nil
	}

	// The shared fetch must outlive any single waiter's cancellation.
	v, err, _ := c.group.Do(kid, func() (any, error) {
		return c.load(context.WithoutCancel(ctx), kid)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *RegistryClient) load(ctx context.Context, kid string) (string, error) {
	if key, ok := c.keys.Get(kid); ok {
		return key, nil
	}

	if c.store != nil {
		key, ok, err := c.store.Get(ctx, kid)
		switch {
		case err != nil:
			c.logger.WarnContext(ctx, "key store lookup failed", logger.KeyID(kid), logger.Error(err))
		case ok:
			c.metrics.RecordKeyFetch(SourceStore)
			c.keys.Put(kid, key)
			return key, nil
		}
	}

	key, err := c.fetchRemote(ctx, kid)
	if err != nil {
		return "", err
	}
	c.metrics.RecordKeyFetch(SourceRegistry)
	c.keys.Put(kid, key)

	if c.store != nil {
		if err := c.store.Set(ctx, kid, key); err != nil {
			c.logger.WarnContext(ctx, "key store write failed", logger.KeyID(kid), logger.Error(err))
		}
	}
	return key, nil
}

type publicKeyResponse struct {
	Key       string `json:"key"`
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
}

func (c *RegistryClient) fetchRemote(ctx context.Context, kid string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+publicKeyPath+url.PathEscape(kid), nil)
	if err != nil {
		return c.unavailable(ctx, kid, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return c.unavailable(ctx, kid, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.metrics.RecordKeyFetch(SourceMiss)
		c.logger.InfoContext(ctx, "public key not found in registry", logger.KeyID(kid))
		return "", ErrKeyNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return c.unavailable(ctx, kid, fmt.Errorf("registry returned status %d", resp.StatusCode))
	}

	var payload publicKeyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxKeyResponseSize)).Decode(&payload); err != nil {
		return c.unavailable(ctx, kid, err)
	}

	if !strings.EqualFold(payload.Algorithm, registryAlgorithm) {
		c.metrics.RecordKeyFetch(SourceMiss)
		c.logger.WarnContext(ctx, "registry key uses unsupported algorithm",
			logger.KeyID(kid), logger.Algorithm(payload.Algorithm, payload.Digest))
		return "", ErrKeyNotFound
	}
	if !c.digests[strings.ToUpper(payload.Digest)] {
		c.metrics.RecordKeyFetch(SourceMiss)
		c.logger.WarnContext(ctx, "registry key uses unaccepted digest",
			logger.KeyID(kid), logger.Algorithm(payload.Algorithm, payload.Digest))
		return "", ErrKeyNotFound
	}
	if _, err := ParsePublicKey(payload.Key); err != nil {
		c.metrics.RecordKeyFetch(SourceMiss)
		c.logger.ErrorContext(ctx, "registry returned an unusable public key", logger.KeyID(kid), logger.Error(err))
		return "", errors.Join(ErrKeyNotFound, err)
	}

	c.logger.DebugContext(ctx, "public key fetched", logger.KeyID(kid), logger.Duration(time.Since(start)))
	return payload.Key, nil
}

// acceptedDigests mirrors WithAcceptedDigests: unknown names are dropped and
// an empty result falls back to SHA1.
func acceptedDigests(names []string) map[string]bool {
	accepted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := digestFuncs[name]; ok {
			accepted[name] = true
		}
	}
	if len(accepted) == 0 {
		accepted[DigestSHA1] = true
	}
	return accepted
}

func (c *RegistryClient) unavailable(ctx context.Context, kid string, err error) (string, error) {
	c.metrics.RecordKeyFetch(SourceError)
	c.logger.ErrorContext(ctx, "key registry request failed", logger.KeyID(kid), logger.Error(err))
	return "", errors.Join(ErrKeyNotFound, ErrRegistryUnavailable, err)
}
