package totp

import (
	"fmt"

	"github.com/dmitrymomot/trustkit/pkg/primitives"
)

var pow10 = [...]uint64{1, 10, 100, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10}

// HOTP implements the RFC 4226 HMAC-based one-time password for counter,
// returning a zero-padded code of the given length. digits must be within
// [MinDigits, MaxDigits]; out-of-range values are clamped.
func HOTP(secret []byte, counter uint64, digits int) string {
	digits = min(max(digits, MinDigits), MaxDigits)

	msg := primitives.PackCounter(counter)
	sum := primitives.HMACSHA1(secret, msg[:])

	// Dynamic truncation: the low nibble of the last byte selects a 4-byte window,
	// and the top bit is masked to keep the result a positive 31-bit integer.
	offset := sum[len(sum)-1] & 0x0f
	code := uint64(sum[offset]&0x7f)<<24 |
		uint64(sum[offset+1])<<16 |
		uint64(sum[offset+2])<<8 |
		uint64(sum[offset+3])

	return fmt.Sprintf("%0*d", digits, code%pow10[digits])
}
