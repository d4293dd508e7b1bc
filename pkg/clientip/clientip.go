package clientip

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/dmitrymomot/trustkit/pkg/logger"
)

// Resolver finds the originating client address of a request. Proxy
// headers are only believed when the TCP peer is a trusted proxy.
type Resolver struct {
	headers []string
	trusted []netip.Prefix
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHeaders sets the proxy headers consulted, in order. Empty names are
// ignored.
func WithHeaders(names ...string) Option {
	return func(res *Resolver) {
		for _, h := range names {
			if h = strings.TrimSpace(h); h != "" {
				res.headers = append(res.headers, http.CanonicalHeaderKey(h))
			}
		}
	}
}

// WithTrustedProxies sets the networks whose requests may carry proxy
// headers. Invalid prefixes are ignored.
func WithTrustedProxies(prefixes ...netip.Prefix) Option {
	return func(res *Resolver) {
		for _, p := range prefixes {
			if p.IsValid() {
				res.trusted = append(res.trusted, p.Masked())
			}
		}
	}
}

// New returns a Resolver. Without both headers and trusted proxies it
// uses the TCP peer address only.
func New(opts ...Option) *Resolver {
	res := &Resolver{}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// ParsePrefixes parses CIDRs and bare addresses, the latter as single-host
// prefixes.
func ParsePrefixes(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, errors.Join(ErrInvalidPrefix, err)
			}
			prefixes = append(prefixes, p)
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, errors.Join(ErrInvalidPrefix, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// IP returns the normalized client address, or "" when none is valid.
//
// When the peer is a trusted proxy, each configured header is walked from
// the right, skipping trusted hops; the first untrusted address is the
// client. Entries left of it were written by the client and are ignored.
// An unparsable entry ends the walk and the peer address is used.
func (res *Resolver) IP(r *http.Request) string {
	peer, ok := peerAddr(r.RemoteAddr)
	if !ok {
		return ""
	}
	if !res.isTrusted(peer) {
		return peer.String()
	}

	for _, h := range res.headers {
		values := r.Header.Values(h)
		if len(values) == 0 {
			continue
		}
		hops := strings.Split(strings.Join(values, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				return peer.String()
			}
			if addr = addr.Unmap(); !res.isTrusted(addr) {
				return addr.String()
			}
		}
	}
	return peer.String()
}

func (res *Resolver) isTrusted(addr netip.Addr) bool {
	for _, p := range res.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func peerAddr(remote string) (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(host))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// Middleware stores the resolved address in the request context.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), res.IP(r))))
	})
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying ip.
func WithContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

// FromContext returns the address stored by Middleware, or "".
func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}

// LoggerExtractor adds client_ip to records logged with a request context.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if ip := FromContext(ctx); ip != "" {
			return slog.String("client_ip", ip), true
		}
		return slog.Attr{}, false
	}
}
