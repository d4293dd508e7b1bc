// Package clientip resolves the address a request originated from when the
// receiver runs behind reverse proxies.
//
// By default only the TCP peer is used. Proxy headers are believed only when
// the peer is inside a trusted prefix, and X-Forwarded-For is read from the
// right so that entries a client wrote itself never pick its address (or
// its rate limit bucket):
//
//	proxies, err := clientip.ParsePrefixes([]string{"10.0.0.0/8"})
//	...
//	res := clientip.New(
//		clientip.WithHeaders("X-Forwarded-For"),
//		clientip.WithTrustedProxies(proxies...),
//	)
//	r.Use(res.Middleware)
//	...
//	ip := clientip.FromContext(r.Context())
package clientip
