// Package webhook authenticates inbound notifications signed with ECDSA by a
// remote provider (eBay marketplace notifications use this scheme), and can
// produce such notifications for local testing.
//
// # Signature format
//
// The signature travels in a single header (X-EBAY-SIGNATURE by default)
// whose value is base64-encoded JSON:
//
//	{"alg":"ecdsa","kid":"<key id>","signature":"<base64 DER>","digest":"SHA1"}
//
// The signature covers the raw request body. The key id names a public key
// held by the provider's key registry.
//
// # Verification
//
// A Verifier resolves the key through a KeyFetcher and returns a boolean
// verdict. Malformed headers, unsupported algorithms, unknown keys and
// mismatches all produce false with a nil error; only operational failures
// of the fetcher are returned as errors. Headers with an unsupported
// algorithm or no key id are rejected before the fetcher is consulted.
//
//	registry, err := webhook.NewRegistryClient(cfg,
//	    webhook.WithKeyStore(redisStore),
//	    webhook.WithRegistryLogger(log),
//	)
//	verifier := webhook.NewVerifier(registry, webhook.WithLogger(log))
//
//	ok, err := verifier.VerifyRequest(ctx, body, r.Header.Get(webhook.DefaultSignatureHeader))
//
// Only SHA1 digests are accepted by default because that is what the
// provider signs with. WithAcceptedDigests(DigestSHA1, DigestSHA256) opens
// the door for a migration without breaking current traffic.
//
// # Key registry
//
// RegistryClient obtains an OAuth2 client-credentials token from
// {base}/oauth2/token and fetches keys from {base}/public_key/{kid}. Keys
// are cached in an LRU (256 entries by default), optionally backed by a
// shared KeyStore such as pkg/redis. Concurrent misses for one kid share a
// single request, failed lookups are never cached, and transport failures
// are logged and reported as ErrKeyNotFound so the request is treated as
// unauthenticated.
//
// The registry is known to return PEM bodies with their newlines stripped;
// NormalizePEM restores the 64-character line wrapping before parsing.
//
// # HTTP integration
//
// Middleware wraps a handler, reads the body once, verifies it and replays
// it for the next handler. ChallengeHandler answers the provider's endpoint
// validation handshake.
//
//	r.Get("/webhooks/ebay", webhook.ChallengeHandler(cfg.VerificationToken, cfg.Endpoint))
//	r.With(webhook.Middleware(verifier, cfg.MiddlewareOptions()...)).
//	    Post("/webhooks/ebay", handleNotification)
//
// # Sending
//
// Sign builds a header for a body and Sender posts signed bodies with
// retries, which is handy for exercising a receiver end to end.
package webhook
