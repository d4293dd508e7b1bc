// Package qrcode renders QR code images, primarily for otpauth:// provisioning
// URIs shown during TOTP enrollment.
//
// It is a thin wrapper around github.com/skip2/go-qrcode that adds input
// validation, functional options and a data-URI helper.
//
// # Usage
//
//	png, err := qrcode.Generate(uri)                          // 256px, medium recovery
//	png, err = qrcode.Generate(uri, qrcode.WithSize(512), qrcode.WithLevel(qrcode.LevelHigh))
//
//	src, err := qrcode.GenerateBase64Image(uri)               // "data:image/png;base64,..."
//
// Errors are package-level sentinels (ErrEmptyContent, ErrFailedToGenerateQRCode)
// suitable for errors.Is.
package qrcode
