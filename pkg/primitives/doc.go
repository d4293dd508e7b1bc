// Package primitives holds the small encoding and MAC helpers shared by the
// totp and webhook packages.
//
// Everything here is a thin, allocation-light wrapper over the standard
// crypto and encoding packages with the tolerance rules both callers need:
// base32 decoding ignores whitespace, case and missing padding (authenticator
// apps and humans mangle all three), base64 decoding accepts padded and
// unpadded input, and equality checks never exit early.
//
// # Usage
//
//	var ctr = primitives.PackCounter(1)
//	mac := primitives.HMACSHA1(secret, ctr[:])
//
//	secret, err := primitives.DecodeBase32("gezd gnbv gy3t qojq")
//	if err != nil {
//	    // errors.Is(err, primitives.ErrInvalidBase32)
//	}
//
// The package has no state and every function is safe for concurrent use.
package primitives
