package webhook

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// DeliveryResult describes one delivery attempt.
type DeliveryResult struct {
	StatusCode int
	Attempt    int
	Duration   time.Duration
	Error      error
}

// Sender delivers signed notifications the way the provider does, for
// exercising a receiver locally or from integration tests.
type Sender struct {
	client     *http.Client
	priv       *ecdsa.PrivateKey
	kid        string
	digest     string
	header     string
	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration
	onDelivery func(DeliveryResult)
	sign       func(body []byte) (string, error)
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithSenderHTTPClient sets the HTTP client used for deliveries.
func WithSenderHTTPClient(c *http.Client) SenderOption {
	return func(s *Sender) {
		if c != nil {
			s.client = c
		}
	}
}

// WithSenderDigest sets the digest named in the signature header. Default SHA1.
func WithSenderDigest(digest string) SenderOption {
	return func(s *Sender) {
		if digest != "" {
			s.digest = digest
		}
	}
}

// WithSenderHeader sets the signature header name. Default DefaultSignatureHeader.
func WithSenderHeader(name string) SenderOption {
	return func(s *Sender) {
		if name != "" {
			s.header = name
		}
	}
}

// WithRetries enables up to n retries with exponential backoff starting at
// initial and capped at 30 seconds. 4xx responses other than 408, 425 and
// 429 are not retried.
func WithRetries(n int, initial time.Duration) SenderOption {
	return func(s *Sender) {
		if n >= 0 {
			s.maxRetries = n
		}
		if initial > 0 {
			s.backoff = initial
		}
	}
}

// WithOnDelivery registers a callback invoked after every attempt.
func WithOnDelivery(fn func(DeliveryResult)) SenderOption {
	return func(s *Sender) {
		s.onDelivery = fn
	}
}

// WithSigner replaces the built-in ECDSA signing, e.g. with a key held in
// an HSM. fn returns the full signature header value for body.
func WithSigner(fn func(body []byte) (string, error)) SenderOption {
	return func(s *Sender) {
		s.sign = fn
	}
}

// NewSender returns a Sender signing with priv under key id kid.
func NewSender(priv *ecdsa.PrivateKey, kid string, opts ...SenderOption) (*Sender, error) {
	if priv == nil {
		return nil, ErrInvalidPrivateKey
	}
	if kid == "" {
		return nil, ErrMissingKeyID
	}
	s := &Sender{
		client:     &http.Client{Timeout: 10 * time.Second},
		priv:       priv,
		kid:        kid,
		digest:     DigestSHA1,
		header:     DefaultSignatureHeader,
		backoff:    time.Second,
		maxBackoff: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, ok := digestFuncs[s.digest]; !ok {
		return nil, errors.Join(ErrUnsupportedAlgorithm, errors.New("unknown digest "+s.digest))
	}
	if s.sign == nil {
		s.sign = func(body []byte) (string, error) {
			return Sign(s.priv, s.kid, body, s.digest)
		}
	}
	return s, nil
}

// Send signs body and POSTs it to target, retrying temporary failures.
// Each attempt carries a fresh signature.
func (s *Sender) Send(ctx context.Context, target string, body []byte) error {
	if err := validateTarget(target); err != nil {
		return err
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.nextInterval(attempt)):
			}
		}

		result, err := s.attempt(ctx, target, body)
		result.Attempt = attempt + 1
		if s.onDelivery != nil {
			s.onDelivery(result)
		}
		if err == nil {
			return nil
		}
		lastErr = err

		// Nothing was sent, so a retry would fail the same way.
		if errors.Is(err, ErrPermanentFailure) {
			return err
		}
		if isPermanentStatus(result.StatusCode) {
			return fmt.Errorf("%w: %w", ErrPermanentFailure, err)
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrWebhookDeliveryFailed, s.maxRetries+1, lastErr)
}

func (s *Sender) attempt(ctx context.Context, target string, body []byte) (DeliveryResult, error) {
	start := time.Now()
	result := DeliveryResult{}

	header, err := s.sign(body)
	if err != nil {
		result.Error = fmt.Errorf("%w: %w", ErrPermanentFailure, err)
		return result, result.Error
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		result.Error = fmt.Errorf("%w: %w", ErrPermanentFailure, err)
		return result, result.Error
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "trustkit-webhook/1.0")
	req.Header.Set(s.header, header)

	resp, err := s.client.Do(req)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		return result, err
	}
	defer func() { _ = resp.Body.Close() }()
	result.StatusCode = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 64KB is enough context for an error message.
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		msg := strings.ReplaceAll(string(respBody), "\n", " ")
		msg = truncate(msg, 200)
		result.Error = fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, msg)
		return result, result.Error
	}
	return result, nil
}

// nextInterval grows exponentially with 10% jitter.
func (s *Sender) nextInterval(attempt int) time.Duration {
	interval := float64(s.backoff) * math.Pow(2, float64(attempt-1))
	interval *= 1 + (rand.Float64()*2-1)*0.1
	return time.Duration(min(interval, float64(s.maxBackoff)))
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

func validateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return nil
}

func isPermanentStatus(code int) bool {
	if code < 400 || code >= 500 {
		return false
	}
	switch code {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	}
	return true
}
