// Package totp implements time-based one-time passwords (RFC 6238) on top of
// HOTP (RFC 4226) with HMAC-SHA1, as understood by Google Authenticator,
// 1Password, Authy and compatible apps.
//
// The package covers the whole enrollment and login flow: generating a
// shared secret, rendering it for manual entry and as an otpauth:// URI (or
// QR code), computing codes and verifying submitted codes within a clock-skew
// window. Helpers for sealing secrets at rest and for single-use recovery
// codes are included as well.
//
// # Verification
//
// Verify accepts a code if it matches any time step touched by the interval
// [t-window, t+window]. Whitespace inside the submitted code is ignored;
// codes of the wrong length or with non-digit characters are rejected
// without an error. Every candidate step is compared in constant time and
// the loop never stops early, so response timing does not reveal which step
// matched.
//
//	ok, err := totp.Verify(secret, "123 456")
//	if err != nil {
//		// invalid options or a window reaching before the Unix epoch
//	}
//
// Replay protection (remembering the last accepted step per user) and
// attempt rate limiting are left to the caller.
//
// # Provisioning
//
// BuildProvisioningURI emits a byte-exact URI with parameters in a fixed
// order:
//
//	otpauth://totp/Acme:alice%40example.com?secret=GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ&issuer=Acme&algorithm=SHA1&digits=6&period=30
//
// # Authenticator
//
// Authenticator binds a Config (loaded from TOTP_* environment variables)
// to the functions above and adds Enroll, which returns the secret, its
// display form, the URI and a PNG QR code in one call.
//
//	cfg, err := totp.LoadConfig()
//	auth, err := totp.NewAuthenticator(cfg, totp.WithLogger(log))
//	enrollment, err := auth.Enroll("alice@example.com")
//
// # Storage
//
// SealSecret encrypts a secret with AES-256-GCM under a key derived from
// TOTP_ENCRYPTION_KEY and binds it to the account name, so a sealed value
// moved to another row fails to open. Secrets are never logged.
package totp
