package totp

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// BuildProvisioningURI renders the otpauth:// URI consumed by authenticator apps:
//
//	otpauth://totp/<ISSUER>:<ACCOUNT>?secret=<BASE32>&issuer=<ISSUER>&algorithm=SHA1&digits=6&period=30
//
// Issuer and account are NFC-normalized and percent-encoded individually; the
// colon between them stays literal. Query parameters always appear in the
// order above, so equal inputs yield byte-equal output. Only WithDigits and
// WithPeriod affect the result.
func BuildProvisioningURI(secret []byte, account, issuer string, opts ...Option) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	if strings.TrimSpace(account) == "" {
		return "", ErrMissingAccountName
	}
	if strings.TrimSpace(issuer) == "" {
		return "", ErrMissingIssuer
	}
	o, err := newOptions(opts)
	if err != nil {
		return "", err
	}

	issuer = escape(issuer)

	var b strings.Builder
	b.WriteString("otpauth://totp/")
	b.WriteString(issuer)
	b.WriteByte(':')
	b.WriteString(escape(account))
	b.WriteString("?secret=")
	b.WriteString(encodeSecret(secret))
	b.WriteString("&issuer=")
	b.WriteString(issuer)
	b.WriteString("&algorithm=")
	b.WriteString(Algorithm)
	b.WriteString("&digits=")
	b.WriteString(strconv.Itoa(o.digits))
	b.WriteString("&period=")
	b.WriteString(strconv.Itoa(o.period))
	return b.String(), nil
}

// escape percent-encodes everything outside the RFC 3986 unreserved set.
// url.QueryEscape does that except for spaces, which it turns into '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(norm.NFC.String(s)), "+", "%20")
}
