package totp

import (
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/trustkit/pkg/logger"
	"github.com/dmitrymomot/trustkit/pkg/qrcode"
)

// Authenticator applies one Config to every TOTP operation. It holds no
// per-user state and is safe for concurrent use.
type Authenticator struct {
	cfg    Config
	now    func() time.Time
	logger *slog.Logger
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithAuthenticatorClock replaces the wall clock, mostly for tests.
func WithAuthenticatorClock(now func() time.Time) AuthenticatorOption {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger used for enrollment and verification events.
// Secrets and submitted codes are never logged.
func WithLogger(l *slog.Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		if l != nil {
			a.logger = l
		}
	}
}

// Enrollment is everything a user needs to add an account to an authenticator app.
// Secret must be persisted by the caller (see SealSecret); the rest is display-only.
type Enrollment struct {
	Secret  []byte
	Display string // base32 in groups of four for manual entry
	URI     string // otpauth:// provisioning URI
	QRCode  string // PNG data URI encoding URI
}

// NewAuthenticator validates cfg and returns an Authenticator.
func NewAuthenticator(cfg Config, opts ...AuthenticatorOption) (*Authenticator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Authenticator{
		cfg:    cfg,
		now:    time.Now,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(logger.Component("totp"))
	return a, nil
}

// Config returns the configuration the authenticator was built with.
func (a *Authenticator) Config() Config {
	return a.cfg
}

// GenerateSecret returns a new secret of the configured length.
func (a *Authenticator) GenerateSecret() ([]byte, error) {
	return GenerateSecretN(a.cfg.SecretBytes)
}

// ProvisioningURI renders the otpauth:// URI for account under the configured issuer.
func (a *Authenticator) ProvisioningURI(secret []byte, account string) (string, error) {
	return BuildProvisioningURI(secret, account, a.cfg.Issuer, a.cfg.options()...)
}

// Code returns the current code for secret.
func (a *Authenticator) Code(secret []byte) (string, error) {
	return GenerateCode(secret, append(a.cfg.options(), WithClock(a.now))...)
}

// Verify checks code against secret at the current time within the configured window.
// A secret whose length differs from the configured length is rejected.
func (a *Authenticator) Verify(secret []byte, code string) (bool, error) {
	if len(secret) != a.cfg.SecretBytes {
		a.logger.Debug("totp secret has unexpected length", slog.Int("length", len(secret)))
		return false, nil
	}
	ok, err := Verify(secret, code, append(a.cfg.options(), WithClock(a.now))...)
	if err != nil {
		a.logger.Error("totp verification failed", logger.Error(err))
		return false, err
	}
	return ok, nil
}

// Enroll creates a fresh secret for account and renders it for display.
func (a *Authenticator) Enroll(account string) (Enrollment, error) {
	secret, err := a.GenerateSecret()
	if err != nil {
		return Enrollment{}, err
	}
	uri, err := a.ProvisioningURI(secret, account)
	if err != nil {
		return Enrollment{}, err
	}
	qr, err := qrcode.GenerateBase64Image(uri, qrcode.WithSize(a.cfg.QRCodeSize))
	if err != nil {
		return Enrollment{}, errors.Join(ErrFailedToRenderQRCode, err)
	}

	a.logger.Info("totp enrollment created", slog.String("issuer", a.cfg.Issuer))
	return Enrollment{
		Secret:  secret,
		Display: FormatForDisplay(secret),
		URI:     uri,
		QRCode:  qr,
	}, nil
}
