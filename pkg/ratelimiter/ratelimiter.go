package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// Limiter applies one token bucket configuration per key.
type Limiter struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New returns a Limiter over store.
func New(store Store, cfg Config, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l := &Limiter{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow takes one token for key.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN takes n tokens for key.
func (l *Limiter) AllowN(ctx context.Context, key string, n int) (Result, error) {
	if n <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidTokenCount, n)
	}
	remaining, resetAt, err := l.store.Take(ctx, key, n, l.now(), l.cfg)
	if err != nil {
		return Result{}, err
	}
	return Result{Limit: l.cfg.Capacity, Remaining: remaining, ResetAt: resetAt}, nil
}

// Reset forgets the bucket for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
