package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// Store keeps bucket state.
type Store interface {
	// Take refills the bucket for key as of now, then removes n tokens.
	// A negative remaining count means the request is denied.
	Take(ctx context.Context, key string, n int, now time.Time, cfg Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore is a process-local Store. Buckets idle for longer than the
// idle timeout are dropped by a background sweep until Close is called.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	idle      time.Duration
	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore starts a store sweeping every sweep interval. A zero sweep
// disables the background goroutine.
func NewMemoryStore(sweep, idle time.Duration) *MemoryStore {
	s := &MemoryStore{
		buckets: make(map[string]*bucket),
		idle:    idle,
		stop:    make(chan struct{}),
	}
	if sweep > 0 {
		go s.sweepLoop(sweep)
	}
	return s
}

func (s *MemoryStore) Take(_ context.Context, key string, n int, now time.Time, cfg Config) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{tokens: cfg.Capacity, lastRefill: now}
		s.buckets[key] = b
	}

	b.lastAccess = now
	if elapsed := int64(now.Sub(b.lastRefill) / cfg.RefillInterval); elapsed > 0 {
		full := int64(cfg.Capacity/cfg.RefillRate + 1)
		if elapsed >= full {
			b.tokens = cfg.Capacity
			b.lastRefill = now
		} else {
			b.tokens = min(b.tokens+int(elapsed)*cfg.RefillRate, cfg.Capacity)
			b.lastRefill = b.lastRefill.Add(time.Duration(elapsed) * cfg.RefillInterval)
		}
	}

	resetAt := b.lastRefill.Add(cfg.RefillInterval)
	// Denied requests do not dig the bucket deeper.
	if b.tokens < n {
		return b.tokens - n, resetAt, nil
	}
	b.tokens -= n
	return b.tokens, resetAt, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.buckets, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of live buckets.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Sweep drops buckets idle since before now minus the idle timeout.
func (s *MemoryStore) Sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, b := range s.buckets {
		if now.Sub(b.lastAccess) > s.idle {
			delete(s.buckets, key)
		}
	}
}

// Close stops the sweeper. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() { close(s.stop) })
}

func (s *MemoryStore) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			s.Sweep(now)
		case <-s.stop:
			return
		}
	}
}
