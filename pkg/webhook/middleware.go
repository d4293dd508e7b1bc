package webhook

import (
	"bytes"
	"errors"
	"io"
	"net/http"
)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareOptions)

type middlewareOptions struct {
	header       string
	maxBodySize  int64
	rejectStatus int
}

// WithSignatureHeader sets the request header holding the signature.
// Default is DefaultSignatureHeader.
func WithSignatureHeader(name string) MiddlewareOption {
	return func(o *middlewareOptions) {
		if name != "" {
			o.header = name
		}
	}
}

// WithMaxBodySize limits how much of the body is read for verification.
// Larger requests are answered with 413. Default is DefaultMaxBodySize.
func WithMaxBodySize(n int64) MiddlewareOption {
	return func(o *middlewareOptions) {
		if n > 0 {
			o.maxBodySize = n
		}
	}
}

// WithRejectStatus sets the status returned for unauthenticated requests.
// Default is 401 Unauthorized; some providers expect 412 or 403.
func WithRejectStatus(code int) MiddlewareOption {
	return func(o *middlewareOptions) {
		if code >= 400 && code < 500 {
			o.rejectStatus = code
		}
	}
}

// Middleware verifies the signature of every request before passing it on.
// The raw body is read once, verified and handed to next unchanged. Every
// verification failure gets the same response, so callers cannot tell
// which check failed; fetcher errors get 500.
func Middleware(v *Verifier, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	o := &middlewareOptions{
		header:       DefaultSignatureHeader,
		maxBodySize:  DefaultMaxBodySize,
		rejectStatus: http.StatusUnauthorized,
	}
	for _, opt := range opts {
		opt(o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, o.maxBodySize))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					writeStatus(w, http.StatusRequestEntityTooLarge)
					return
				}
				writeStatus(w, http.StatusBadRequest)
				return
			}

			ok, err := v.VerifyRequest(r.Context(), body, r.Header.Get(o.header))
			if err != nil {
				writeStatus(w, http.StatusInternalServerError)
				return
			}
			if !ok {
				writeStatus(w, o.rejectStatus)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			r.ContentLength = int64(len(body))
			next.ServeHTTP(w, r)
		})
	}
}

func writeStatus(w http.ResponseWriter, code int) {
	http.Error(w, http.StatusText(code), code)
}
