// Package ratelimiter is a token bucket limiter for HTTP endpoints.
//
// A webhook receiver fetches a public key from the registry for every
// unknown kid, and unknown kids are never cached, so unauthenticated
// traffic is capped per client before it reaches the verifier:
//
//	store := ratelimiter.NewMemoryStore(time.Minute, time.Hour)
//	defer store.Close()
//	limiter, err := ratelimiter.New(store, cfg)
//	...
//	r.With(ratelimiter.Middleware(limiter, byIP, log)).Post("/webhook", h)
//
// pkg/redis provides a Store shared between receiver replicas.
package ratelimiter
