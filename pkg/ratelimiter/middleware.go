package ratelimiter

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/trustkit/pkg/logger"
)

// KeyFunc picks the bucket for a request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// Middleware answers 429 with Retry-After once the bucket for a request's
// key is empty. Store failures are logged and the request is let through.
func Middleware(l *Limiter, key KeyFunc, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Component("ratelimiter"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := l.Allow(r.Context(), k)
			if err != nil {
				log.WarnContext(r.Context(), "rate limit store failed", logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, res.Remaining)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				retry := int(math.Ceil(res.RetryAfter(l.now()).Seconds()))
				h.Set("Retry-After", strconv.Itoa(max(1, retry)))
				log.InfoContext(r.Context(), "rate limit exceeded", slog.String("key", k))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
