package webhook

import (
	"encoding/json"
	"errors"

	"github.com/dmitrymomot/trustkit/pkg/primitives"
)

const (
	AlgorithmECDSA = "ecdsa"
	DigestSHA1     = "SHA1"
	DigestSHA256   = "SHA256"

	// DefaultSignatureHeader is the header eBay notifications carry their signature in.
	DefaultSignatureHeader = "X-EBAY-SIGNATURE"
)

// SignatureHeader is the decoded signature header: a base64-encoded JSON
// object naming the algorithm, the key id and the DER signature.
type SignatureHeader struct {
	Alg       string `json:"alg"`
	Kid       string `json:"kid"`
	Signature string `json:"signature"` // base64 of the ASN.1 DER ECDSA signature
	Digest    string `json:"digest"`
}

// ParseSignatureHeader decodes a header value. Unknown JSON fields are
// ignored; missing ones are left empty.
func ParseSignatureHeader(value string) (SignatureHeader, error) {
	raw, err := primitives.DecodeBase64(value)
	if err != nil {
		return SignatureHeader{}, errors.Join(ErrMalformedHeader, err)
	}

	var h SignatureHeader
	if err := json.Unmarshal(raw, &h); err != nil {
		return SignatureHeader{}, errors.Join(ErrMalformedHeader, err)
	}
	return h, nil
}

// Encode renders h in the wire format accepted by ParseSignatureHeader.
func (h SignatureHeader) Encode() (string, error) {
	raw, err := json.Marshal(h)
	if err != nil {
		return "", errors.Join(ErrMalformedHeader, err)
	}
	return primitives.EncodeBase64(raw), nil
}
