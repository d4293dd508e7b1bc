package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	// Header is the default request id header.
	Header      = "X-Request-ID"
	maxIDLength = 128
)

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type middleware struct {
	header   string
	generate func() string
}

// Option configures the middleware.
type Option func(*middleware)

// WithHeader reads and echoes the id under a different header, e.g. the
// provider's correlation header. Empty names are ignored.
func WithHeader(name string) Option {
	return func(m *middleware) {
		if name != "" {
			m.header = http.CanonicalHeaderKey(name)
		}
	}
}

// WithGenerator replaces the UUIDv4 generator.
func WithGenerator(fn func() string) Option {
	return func(m *middleware) {
		if fn != nil {
			m.generate = fn
		}
	}
}

// New returns middleware that reuses a valid incoming id or generates one,
// stores it in the request context and echoes it in the response.
func New(opts ...Option) func(http.Handler) http.Handler {
	m := &middleware{header: Header, generate: uuid.NewString}
	for _, opt := range opts {
		opt(m)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(m.header)
			if !isValid(id) {
				id = m.generate()
			}
			w.Header().Set(m.header, id)
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
		})
	}
}

// Middleware is New with defaults.
func Middleware(next http.Handler) http.Handler {
	return New()(next)
}

func isValid(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}
