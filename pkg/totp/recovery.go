package totp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// GenerateRecoveryCodes creates single-use backup codes for users who lose
// their authenticator. Each code carries 64 bits of entropy rendered as
// "XXXX-XXXX-XXXX-XXXX" in uppercase hex.
func GenerateRecoveryCodes(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidRecoveryCodeCount
	}

	codes := make([]string, count)
	buf := make([]byte, 8)
	for i := range count {
		if _, err := rand.Read(buf); err != nil {
			return nil, errors.Join(ErrFailedToGenerateRecoveryCode, err)
		}
		h := fmt.Sprintf("%X", buf)
		codes[i] = h[0:4] + "-" + h[4:8] + "-" + h[8:12] + "-" + h[12:16]
	}
	return codes, nil
}

// HashRecoveryCode returns the hex SHA-256 of the normalized code for storage.
// Dashes, whitespace and case are ignored.
func HashRecoveryCode(code string) string {
	sum := sha256.Sum256([]byte(normalizeRecoveryCode(code)))
	return hex.EncodeToString(sum[:])
}

// VerifyRecoveryCode compares code with a stored hash in constant time.
func VerifyRecoveryCode(code, hashedCode string) bool {
	return subtle.ConstantTimeCompare([]byte(HashRecoveryCode(code)), []byte(hashedCode)) == 1
}

func normalizeRecoveryCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(stripSpace(code), "-", ""))
}
