package totp

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"unicode"
)

// GenerateCode returns the TOTP code for the time step containing the
// reference time (the wall clock unless WithTime or WithClock is given).
func GenerateCode(secret []byte, opts ...Option) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	o, err := newOptions(opts)
	if err != nil {
		return "", err
	}

	t := o.now().Unix()
	if t < 0 {
		return "", fmt.Errorf("%w: reference time %d is before the epoch", ErrNegativeCounter, t)
	}
	return HOTP(secret, uint64(t/int64(o.period)), o.digits), nil
}

// Verify reports whether code matches the TOTP for any time step touched by
// [t-window, t+window], where t is the reference time.
//
// Internal whitespace in code is ignored. An empty secret, a non-numeric code
// or a code of the wrong length yields false without an error. Errors are
// reserved for invalid options and for a window reaching before the epoch.
//
// Every candidate step is computed and compared in constant time; the loop
// does not stop at the first match.
func Verify(secret []byte, code string, opts ...Option) (bool, error) {
	o, err := newOptions(opts)
	if err != nil {
		return false, err
	}
	if len(secret) == 0 {
		return false, nil
	}

	code = stripSpace(code)
	if len(code) != o.digits || !isNumeric(code) {
		return false, nil
	}

	t := o.now().Unix()
	window, period := int64(o.window), int64(o.period)
	if t-window < 0 {
		return false, fmt.Errorf("%w: reference time %d with window %d", ErrNegativeCounter, t, window)
	}

	first, last := uint64((t-window)/period), uint64((t+window)/period)

	submitted := []byte(code)
	matched := 0
	for counter := first; counter <= last; counter++ {
		matched |= subtle.ConstantTimeCompare([]byte(HOTP(secret, counter, o.digits)), submitted)
	}
	return matched == 1, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
