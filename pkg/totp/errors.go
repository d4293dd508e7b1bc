package totp

import "errors"

var (
	ErrFailedToGenerateSecret        = errors.New("failed to generate TOTP secret")
	ErrFailedToSealSecret            = errors.New("failed to seal TOTP secret")
	ErrFailedToOpenSecret            = errors.New("failed to open TOTP secret")
	ErrInvalidCipherTooShort         = errors.New("cipher text too short")
	ErrFailedToGenerateEncryptionKey = errors.New("failed to generate encryption key")
	ErrFailedToLoadEncryptionKey     = errors.New("failed to load encryption key")
	ErrInvalidEncryptionKeyLength    = errors.New("invalid encryption key length")
	ErrEncryptionKeyNotSet           = errors.New("TOTP encryption key not set")
	ErrMissingSecret                 = errors.New("missing secret")
	ErrInvalidSecret                 = errors.New("invalid secret")
	ErrInvalidSecretLength           = errors.New("invalid secret length")
	ErrMissingAccountName            = errors.New("missing account name")
	ErrMissingIssuer                 = errors.New("missing issuer")
	ErrInvalidParams                 = errors.New("invalid TOTP parameters")
	ErrNegativeCounter               = errors.New("time step counter would be negative")
	ErrInvalidRecoveryCodeCount      = errors.New("invalid recovery code count, must be greater than 0")
	ErrFailedToGenerateRecoveryCode  = errors.New("failed to generate recovery code")
	ErrFailedToRenderQRCode          = errors.New("failed to render provisioning QR code")
)
