package primitives

import "errors"

var (
	ErrInvalidBase32 = errors.New("invalid base32 input")
	ErrInvalidBase64 = errors.New("invalid base64 input")
)
