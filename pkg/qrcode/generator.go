package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content string is empty or only whitespace
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrFailedToGenerateQRCode is returned when the QR code generation fails.
	ErrFailedToGenerateQRCode = errors.New("failed to generate QR code")
)

// DefaultSize is the image edge in pixels used when no size is specified.
const DefaultSize = 256

// Level is the error-correction level of the generated symbol.
type Level int

const (
	LevelLow     Level = iota // ~7% recovery
	LevelMedium               // ~15% recovery, default
	LevelHigh                 // ~25% recovery
	LevelHighest              // ~30% recovery
)

func (l Level) recovery() skipqrcode.RecoveryLevel {
	switch l {
	case LevelLow:
		return skipqrcode.Low
	case LevelHigh:
		return skipqrcode.High
	case LevelHighest:
		return skipqrcode.Highest
	default:
		return skipqrcode.Medium
	}
}

// Option configures image generation.
type Option func(*options)

type options struct {
	size    int
	level   Level
	noQuiet bool
}

// WithSize sets the image edge in pixels. Non-positive values keep DefaultSize.
func WithSize(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.size = px
		}
	}
}

// WithLevel sets the error-correction level.
func WithLevel(l Level) Option {
	return func(o *options) { o.level = l }
}

// WithoutBorder drops the quiet zone around the symbol.
func WithoutBorder() Option {
	return func(o *options) { o.noQuiet = true }
}

// Generate renders content as a PNG image.
func Generate(content string, opts ...Option) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	o := &options{size: DefaultSize, level: LevelMedium}
	for _, opt := range opts {
		opt(o)
	}

	q, err := skipqrcode.New(content, o.level.recovery())
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQRCode, err)
	}
	q.DisableBorder = o.noQuiet

	png, err := q.PNG(o.size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQRCode, err)
	}
	return png, nil
}

// GenerateBase64Image renders content as a PNG data URI ready for an <img src>.
//
//	uri, err := qrcode.GenerateBase64Image(provisioningURI, qrcode.WithSize(200))
//	// <img src="{{.QRCode}}">
func GenerateBase64Image(content string, opts ...Option) (string, error) {
	png, err := Generate(content, opts...)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
