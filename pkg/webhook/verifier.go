package webhook

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha1"
	"crypto/sha256"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/trustkit/pkg/logger"
	"github.com/dmitrymomot/trustkit/pkg/primitives"
)

// KeyFetcher resolves a key id to a PEM-encoded ECDSA public key.
// It returns ErrKeyNotFound when the key does not exist or cannot be
// obtained; any other error is treated as operational and propagated.
type KeyFetcher interface {
	FetchKey(ctx context.Context, kid string) (string, error)
}

// KeyFetcherFunc adapts a function to KeyFetcher.
type KeyFetcherFunc func(ctx context.Context, kid string) (string, error)

// FetchKey calls f.
func (f KeyFetcherFunc) FetchKey(ctx context.Context, kid string) (string, error) {
	return f(ctx, kid)
}

var digestFuncs = map[string]func([]byte) []byte{
	DigestSHA1: func(b []byte) []byte {
		sum := sha1.Sum(b)
		return sum[:]
	},
	DigestSHA256: func(b []byte) []byte {
		sum := sha256.Sum256(b)
		return sum[:]
	},
}

// Verifier checks ECDSA signatures on webhook bodies. It holds no state
// besides what its KeyFetcher caches and is safe for concurrent use.
type Verifier struct {
	fetcher KeyFetcher
	digests map[string]func([]byte) []byte
	logger  *slog.Logger
	metrics *Metrics
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithAcceptedDigests replaces the set of accepted digest names. Only SHA1
// is accepted by default because that is what the provider signs with;
// add SHA256 ahead of a provider migration. Unknown names are ignored, and
// an option that leaves no known digest keeps the default.
func WithAcceptedDigests(names ...string) VerifierOption {
	return func(v *Verifier) {
		accepted := make(map[string]func([]byte) []byte, len(names))
		for _, name := range names {
			if fn, ok := digestFuncs[name]; ok {
				accepted[name] = fn
			}
		}
		if len(accepted) > 0 {
			v.digests = accepted
		}
	}
}

// WithLogger sets the logger for verification events.
func WithLogger(l *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithMetrics records every verdict in m.
func WithMetrics(m *Metrics) VerifierOption {
	return func(v *Verifier) {
		v.metrics = m
	}
}

// NewVerifier returns a Verifier resolving keys through fetcher.
func NewVerifier(fetcher KeyFetcher, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		fetcher: fetcher,
		digests: map[string]func([]byte) []byte{DigestSHA1: digestFuncs[DigestSHA1]},
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With(logger.Component("webhook"))
	return v
}

// VerifyRequest reports whether header carries a valid signature of body.
//
// A malformed header, an unsupported algorithm or digest, an unknown key, an
// unparsable key and a signature mismatch all yield false with a nil error.
// The algorithm and key id are checked before the fetcher is called. An
// error is returned only when the fetcher fails with something other than
// ErrKeyNotFound.
func (v *Verifier) VerifyRequest(ctx context.Context, body []byte, header string) (bool, error) {
	if v.fetcher == nil {
		return false, errors.Join(ErrInvalidConfiguration, errors.New("key fetcher is required"))
	}

	h, err := ParseSignatureHeader(header)
	if err != nil {
		return v.reject(ctx, OutcomeMalformed, slog.LevelDebug, "malformed signature header", logger.Error(err))
	}

	hashFn, ok := v.digests[h.Digest]
	if h.Alg != AlgorithmECDSA || !ok {
		return v.reject(ctx, OutcomeUnsupported, slog.LevelWarn, "unsupported signature algorithm",
			logger.KeyID(h.Kid), logger.Algorithm(h.Alg, h.Digest))
	}
	if h.Kid == "" {
		return v.reject(ctx, OutcomeMalformed, slog.LevelDebug, "signature header without key id")
	}

	sig, err := primitives.DecodeBase64(h.Signature)
	if err != nil || len(sig) == 0 {
		return v.reject(ctx, OutcomeMalformed, slog.LevelDebug, "signature is not valid base64", logger.KeyID(h.Kid))
	}

	pemKey, err := v.fetcher.FetchKey(ctx, h.Kid)
	if errors.Is(err, ErrKeyNotFound) {
		return v.reject(ctx, OutcomeKeyUnavailable, slog.LevelError, "public key unavailable", logger.KeyID(h.Kid))
	}
	if err != nil {
		v.metrics.RecordVerification(OutcomeError)
		v.logger.ErrorContext(ctx, "public key fetch failed", logger.KeyID(h.Kid), logger.Error(err))
		return false, err
	}

	pub, err := ParsePublicKey(pemKey)
	if err != nil {
		return v.reject(ctx, OutcomeInvalidKey, slog.LevelError, "public key cannot be parsed",
			logger.KeyID(h.Kid), logger.Error(err))
	}

	if !ecdsa.VerifyASN1(pub, hashFn(body), sig) {
		return v.reject(ctx, OutcomeMismatch, slog.LevelInfo, "webhook signature mismatch", logger.KeyID(h.Kid))
	}

	v.metrics.RecordVerification(OutcomeAccepted)
	v.logger.DebugContext(ctx, "webhook signature verified", logger.KeyID(h.Kid))
	return true, nil
}

func (v *Verifier) reject(ctx context.Context, outcome string, level slog.Level, msg string, attrs ...slog.Attr) (bool, error) {
	v.metrics.RecordVerification(outcome)
	v.logger.LogAttrs(ctx, level, msg, append(attrs, logger.Outcome(outcome))...)
	return false, nil
}

// VerifyRequest verifies one request with a default Verifier.
func VerifyRequest(ctx context.Context, body []byte, header string, fetcher KeyFetcher) (bool, error) {
	return NewVerifier(fetcher).VerifyRequest(ctx, body, header)
}
