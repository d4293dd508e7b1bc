package webhook

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"strings"
	"unicode"
)

const (
	pemPublicKeyBegin = "-----BEGIN PUBLIC KEY-----"
	pemPublicKeyEnd   = "-----END PUBLIC KEY-----"
	pemLineLength     = 64
)

// NormalizePEM re-wraps the body of a public key PEM at 64 characters per
// line. The eBay key registry returns keys with all inter-line newlines
// removed, which encoding/pem refuses to decode. Input without both markers
// is returned unchanged.
func NormalizePEM(key string) string {
	start := strings.Index(key, pemPublicKeyBegin)
	if start < 0 {
		return key
	}
	bodyStart := start + len(pemPublicKeyBegin)
	end := strings.Index(key[bodyStart:], pemPublicKeyEnd)
	if end < 0 {
		return key
	}

	body := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, key[bodyStart:bodyStart+end])

	var b strings.Builder
	b.Grow(len(body) + len(body)/pemLineLength + len(pemPublicKeyBegin) + len(pemPublicKeyEnd) + 4)
	b.WriteString(pemPublicKeyBegin)
	b.WriteByte('\n')
	for i := 0; i < len(body); i += pemLineLength {
		b.WriteString(body[i:min(i+pemLineLength, len(body))])
		b.WriteByte('\n')
	}
	b.WriteString(pemPublicKeyEnd)
	b.WriteByte('\n')
	return b.String()
}

// ParsePublicKey loads an ECDSA public key from PKIX PEM, single-line or not.
func ParsePublicKey(key string) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(NormalizePEM(key)))
	if block == nil {
		return nil, errors.Join(ErrInvalidPublicKey, errors.New("no PEM block found"))
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, errors.Join(ErrInvalidPublicKey, err)
	}
	ecPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.Join(ErrInvalidPublicKey, errors.New("not an ECDSA key"))
	}
	return ecPub, nil
}

// EncodePublicKey renders pub as PKIX PEM.
func EncodePublicKey(pub *ecdsa.PublicKey) (string, error) {
	if pub == nil {
		return "", ErrInvalidPublicKey
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", errors.Join(ErrInvalidPublicKey, err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// ParsePrivateKey loads an ECDSA private key from SEC 1 ("EC PRIVATE KEY")
// or PKCS #8 ("PRIVATE KEY") PEM.
func ParsePrivateKey(key string) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(key))
	if block == nil {
		return nil, errors.Join(ErrInvalidPrivateKey, errors.New("no PEM block found"))
	}

	switch block.Type {
	case "EC PRIVATE KEY":
		priv, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, errors.Join(ErrInvalidPrivateKey, err)
		}
		return priv, nil
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, errors.Join(ErrInvalidPrivateKey, err)
		}
		priv, ok := parsed.(*ecdsa.PrivateKey)
		if !ok {
			return nil, errors.Join(ErrInvalidPrivateKey, errors.New("not an ECDSA key"))
		}
		return priv, nil
	default:
		return nil, errors.Join(ErrInvalidPrivateKey, errors.New("unexpected PEM block type "+block.Type))
	}
}

// EncodePrivateKey renders priv as SEC 1 PEM.
func EncodePrivateKey(priv *ecdsa.PrivateKey) (string, error) {
	if priv == nil {
		return "", ErrInvalidPrivateKey
	}
	der, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return "", errors.Join(ErrInvalidPrivateKey, err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})), nil
}
