package webhook

import (
	"crypto/ecdsa"
	"crypto/rand"
	"errors"

	"github.com/dmitrymomot/trustkit/pkg/primitives"
)

// Sign produces a signature header value for body in the provider's format.
// It exists for test fixtures, local senders and the CLI; production
// signatures come from the provider.
func Sign(priv *ecdsa.PrivateKey, kid string, body []byte, digest string) (string, error) {
	if priv == nil {
		return "", ErrInvalidPrivateKey
	}
	if kid == "" {
		return "", ErrMissingKeyID
	}
	hashFn, ok := digestFuncs[digest]
	if !ok {
		return "", errors.Join(ErrUnsupportedAlgorithm, errors.New("unknown digest "+digest))
	}

	sig, err := ecdsa.SignASN1(rand.Reader, priv, hashFn(body))
	if err != nil {
		return "", errors.Join(ErrSigningFailed, err)
	}

	return SignatureHeader{
		Alg:       AlgorithmECDSA,
		Kid:       kid,
		Signature: primitives.EncodeBase64(sig),
		Digest:    digest,
	}.Encode()
}
