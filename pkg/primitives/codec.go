package primitives

import (
	"encoding/base32"
	"encoding/base64"
	"errors"
	"strings"
	"unicode"
)

// EncodeBase32 returns the RFC 4648 uppercase encoding of b with standard padding.
func EncodeBase32(b []byte) string {
	return base32.StdEncoding.EncodeToString(b)
}

// DecodeBase32 decodes s, ignoring any whitespace and letter case.
// Missing padding is restored before decoding.
func DecodeBase32(s string) ([]byte, error) {
	clean := strings.ToUpper(stripSpace(s))
	clean = strings.TrimRight(clean, "=")
	if clean == "" {
		return nil, ErrInvalidBase32
	}
	if n := len(clean) % 8; n != 0 {
		clean += strings.Repeat("=", 8-n)
	}
	b, err := base32.StdEncoding.DecodeString(clean)
	if err != nil {
		return nil, errors.Join(ErrInvalidBase32, err)
	}
	return b, nil
}

// EncodeBase64 returns the standard padded base64 encoding of b.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBase64 decodes standard-alphabet base64, padded or not.
func DecodeBase64(s string) ([]byte, error) {
	clean := strings.TrimRight(strings.TrimSpace(s), "=")
	if clean == "" {
		return nil, ErrInvalidBase64
	}
	b, err := base64.RawStdEncoding.DecodeString(clean)
	if err != nil {
		return nil, errors.Join(ErrInvalidBase64, err)
	}
	return b, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
