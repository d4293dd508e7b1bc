package primitives

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
)

// PackCounter encodes c as an 8-byte big-endian integer (RFC 4226 section 5.2).
func PackCounter(c uint64) [8]byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], c)
	return buf
}

// HMACSHA1 returns the 20-byte HMAC-SHA1 of msg under key.
func HMACSHA1(key, msg []byte) []byte {
	h := hmac.New(sha1.New, key)
	h.Write(msg)
	return h.Sum(nil)
}

// ConstantTimeEqual reports whether a and b are equal without exiting early on
// the first differing byte. Slices of different length are never equal; the
// length itself is not treated as secret.
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
