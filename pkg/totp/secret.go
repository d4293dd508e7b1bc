package totp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/trustkit/pkg/primitives"
)

// GenerateSecret returns DefaultSecretBytes of cryptographically secure randomness.
// An error means the system CSPRNG is unusable and must not be ignored.
func GenerateSecret() ([]byte, error) {
	return GenerateSecretN(DefaultSecretBytes)
}

// GenerateSecretN returns n random bytes, n >= MinSecretBytes.
func GenerateSecretN(n int) ([]byte, error) {
	if n < MinSecretBytes {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrInvalidSecretLength, MinSecretBytes, n)
	}
	secret := make([]byte, n)
	if _, err := rand.Read(secret); err != nil {
		return nil, errors.Join(ErrFailedToGenerateSecret, err)
	}
	return secret, nil
}

// FormatForDisplay renders secret as uppercase base32 split into groups of
// four characters, for users who type the key in by hand.
func FormatForDisplay(secret []byte) string {
	encoded := primitives.EncodeBase32(secret)

	var b strings.Builder
	b.Grow(len(encoded) + len(encoded)/4)
	for i := 0; i < len(encoded); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(encoded[i:min(i+4, len(encoded))])
	}
	return b.String()
}

// ParseSecret decodes a base32 secret as typed or scanned by a user: spaces,
// lowercase and missing padding are tolerated.
func ParseSecret(s string) ([]byte, error) {
	secret, err := primitives.DecodeBase32(s)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return secret, nil
}

// encodeSecret is the unpadded form used inside provisioning URIs.
func encodeSecret(secret []byte) string {
	return strings.TrimRight(primitives.EncodeBase32(secret), "=")
}
