package webhook

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/trustkit/pkg/config"
)

const (
	DefaultCacheCapacity = 256
	DefaultHTTPTimeout   = 5 * time.Second
	DefaultMaxBodySize   = 1 << 20
)

// Config describes a webhook receiver: where keys come from and how
// requests are read.
type Config struct {
	RegistryURL       string        `env:"WEBHOOK_REGISTRY_URL,required"`                                                     // Base URL serving /oauth2/token and /public_key/{kid}
	ClientID          string        `env:"WEBHOOK_CLIENT_ID,required"`                                                        // OAuth2 client id for the registry
	ClientSecret      string        `env:"WEBHOOK_CLIENT_SECRET,required"`                                                    // OAuth2 client secret for the registry
	Scopes            []string      `env:"WEBHOOK_SCOPES" envSeparator:"," envDefault:"https://api.ebay.com/oauth/api_scope"` // Scopes requested with the client-credentials grant
	CacheCapacity     int           `env:"WEBHOOK_KEY_CACHE_CAPACITY" envDefault:"256"`                                       // In-memory public key cache size
	HTTPTimeout       time.Duration `env:"WEBHOOK_HTTP_TIMEOUT" envDefault:"5s"`                                              // Applies to token and key requests separately
	SignatureHeader   string        `env:"WEBHOOK_SIGNATURE_HEADER" envDefault:"X-EBAY-SIGNATURE"`                            // Request header carrying the signature
	AcceptedDigests   []string      `env:"WEBHOOK_ACCEPTED_DIGESTS" envSeparator:"," envDefault:"SHA1"`                       // Digest names accepted in signature headers
	MaxBodySize       int64         `env:"WEBHOOK_MAX_BODY_SIZE" envDefault:"1048576"`                                        // Bodies above this size are rejected
	VerificationToken string        `env:"WEBHOOK_VERIFICATION_TOKEN"`                                                        // Endpoint validation token, enables the challenge handler
	Endpoint          string        `env:"WEBHOOK_ENDPOINT"`                                                                  // Public endpoint URL registered with the provider
}

// LoadConfig reads Config from the environment (and ./.env when present).
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the registry settings.
func (c Config) Validate() error {
	u, err := url.Parse(c.RegistryURL)
	if err != nil {
		return errors.Join(ErrInvalidConfiguration, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Join(ErrInvalidConfiguration, errors.New("registry URL must be an absolute http(s) URL"))
	}
	if strings.TrimSpace(c.ClientID) == "" || c.ClientSecret == "" {
		return errors.Join(ErrInvalidConfiguration, errors.New("registry client credentials are required"))
	}
	if c.VerificationToken != "" && c.Endpoint == "" {
		return errors.Join(ErrInvalidConfiguration, errors.New("endpoint is required with a verification token"))
	}
	return nil
}

// VerifierOptions translates the digest settings.
func (c Config) VerifierOptions() []VerifierOption {
	if len(c.AcceptedDigests) == 0 {
		return nil
	}
	return []VerifierOption{WithAcceptedDigests(c.AcceptedDigests...)}
}

// MiddlewareOptions translates the request settings.
func (c Config) MiddlewareOptions() []MiddlewareOption {
	return []MiddlewareOption{
		WithSignatureHeader(c.SignatureHeader),
		WithMaxBodySize(c.MaxBodySize),
	}
}
