package ratelimiter

import "time"

// Config defines a token bucket.
type Config struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"60"`        // Burst size
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"1"`      // Tokens added per interval
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1s"` // How often tokens are added
}

func (c Config) validate() error {
	switch {
	case c.Capacity <= 0:
		return ErrInvalidConfig
	case c.RefillRate <= 0:
		return ErrInvalidConfig
	case c.RefillInterval <= 0:
		return ErrInvalidConfig
	}
	return nil
}

// Result is the outcome of one Allow call.
type Result struct {
	Limit     int
	Remaining int // negative when denied
	ResetAt   time.Time
}

// Allowed reports whether the request fits in the bucket.
func (r Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long a denied caller should wait, relative to now.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed() || !r.ResetAt.After(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}
