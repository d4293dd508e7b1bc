package webhook

import "errors"

// Verification failures (malformed header, unsupported algorithm, missing key,
// signature mismatch) are reported as a false verdict, never as one of these
// errors. The errors below describe operational problems and bad arguments.
var (
	ErrKeyNotFound           = errors.New("public key not found")
	ErrMalformedHeader       = errors.New("malformed signature header")
	ErrUnsupportedAlgorithm  = errors.New("unsupported signature algorithm")
	ErrMissingKeyID          = errors.New("missing key id")
	ErrInvalidPublicKey      = errors.New("invalid public key")
	ErrInvalidPrivateKey     = errors.New("invalid private key")
	ErrSigningFailed         = errors.New("failed to sign webhook payload")
	ErrInvalidConfiguration  = errors.New("invalid webhook configuration")
	ErrRegistryUnavailable   = errors.New("key registry unavailable")
	ErrWebhookDeliveryFailed = errors.New("webhook delivery failed")
	ErrPermanentFailure      = errors.New("permanent webhook failure")
	ErrInvalidURL            = errors.New("invalid webhook URL")
	ErrInvalidPayload        = errors.New("invalid webhook payload")
)
