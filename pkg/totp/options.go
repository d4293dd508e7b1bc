package totp

import (
	"fmt"
	"time"
)

const (
	DefaultSecretBytes = 20 // 160-bit secret, RFC 4226 section 4 recommendation
	MinSecretBytes     = 16 // 128-bit floor from RFC 4226 section 4
	DefaultDigits      = 6
	DefaultPeriod      = 30 // seconds, RFC 6238 default time step
	DefaultWindow      = 30 // seconds of tolerated clock skew on either side
	MinDigits          = 6
	MaxDigits          = 10
	Algorithm          = "SHA1" // uppercase: several authenticators reject "sha1"
)

// Option tunes code generation, verification and URI rendering.
type Option func(*options)

type options struct {
	digits int
	period int
	window int
	now    func() time.Time
}

func defaultOptions() *options {
	return &options{
		digits: DefaultDigits,
		period: DefaultPeriod,
		window: DefaultWindow,
		now:    time.Now,
	}
}

func newOptions(opts []Option) (*options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *options) validate() error {
	if o.digits < MinDigits || o.digits > MaxDigits {
		return fmt.Errorf("%w: digits must be within [%d, %d], got %d", ErrInvalidParams, MinDigits, MaxDigits, o.digits)
	}
	if o.period <= 0 {
		return fmt.Errorf("%w: period must be positive, got %d", ErrInvalidParams, o.period)
	}
	if o.window < 0 {
		return fmt.Errorf("%w: window must not be negative, got %d", ErrInvalidParams, o.window)
	}
	return nil
}

// WithDigits sets the code length. 9 and 10 are accepted, but the leading
// digit of a 10-digit code carries barely more than one bit of entropy.
func WithDigits(n int) Option {
	return func(o *options) { o.digits = n }
}

// WithPeriod sets the time step in seconds.
func WithPeriod(seconds int) Option {
	return func(o *options) { o.period = seconds }
}

// WithWindow sets the tolerated clock skew in seconds, applied on both sides
// of the reference time. Zero accepts only the current time step.
func WithWindow(seconds int) Option {
	return func(o *options) { o.window = seconds }
}

// WithTime pins the reference time instead of reading the wall clock.
func WithTime(t time.Time) Option {
	return func(o *options) { o.now = func() time.Time { return t } }
}

// WithClock replaces the wall clock. Nil is ignored.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
