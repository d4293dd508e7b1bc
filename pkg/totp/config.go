package totp

import (
	"fmt"

	"github.com/dmitrymomot/trustkit/pkg/config"
)

// Config holds the TOTP settings an application exposes to operators.
type Config struct {
	Issuer        string `env:"TOTP_ISSUER,required"`              // Shown by authenticator apps next to the account
	SecretBytes   int    `env:"TOTP_SECRET_BYTES" envDefault:"20"` // Length of newly generated secrets
	Digits        int    `env:"TOTP_DIGITS" envDefault:"6"`        // Code length, 6 to 10
	Period        int    `env:"TOTP_PERIOD" envDefault:"30"`       // Time step in seconds
	Window        int    `env:"TOTP_WINDOW" envDefault:"30"`       // Tolerated clock skew in seconds
	QRCodeSize    int    `env:"TOTP_QR_SIZE" envDefault:"256"`     // Enrollment QR image edge in pixels
	EncryptionKey string `env:"TOTP_ENCRYPTION_KEY"`               // Base64 32-byte key for SealSecret, optional
}

// DefaultConfig returns the RFC 6238 defaults for issuer.
func DefaultConfig(issuer string) Config {
	return Config{
		Issuer:      issuer,
		SecretBytes: DefaultSecretBytes,
		Digits:      DefaultDigits,
		Period:      DefaultPeriod,
		Window:      DefaultWindow,
		QRCodeSize:  256,
	}
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

// Validate checks the config for values the authenticator cannot work with.
func (c Config) Validate() error {
	if c.Issuer == "" {
		return ErrMissingIssuer
	}
	if c.SecretBytes < MinSecretBytes {
		return fmt.Errorf("%w: secret bytes must be at least %d", ErrInvalidParams, MinSecretBytes)
	}
	return (&options{digits: c.Digits, period: c.Period, window: c.Window}).validate()
}

func (c Config) options() []Option {
	return []Option{WithDigits(c.Digits), WithPeriod(c.Period), WithWindow(c.Window)}
}
