package webhook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Verification outcomes, used as the "outcome" label and in logs.
const (
	OutcomeAccepted       = "accepted"
	OutcomeMalformed      = "malformed"
	OutcomeUnsupported    = "unsupported"
	OutcomeKeyUnavailable = "key_unavailable"
	OutcomeInvalidKey     = "invalid_key"
	OutcomeMismatch       = "mismatch"
	OutcomeError          = "error"
)

// Key fetch sources, used as the "source" label.
const (
	SourceCache    = "cache"
	SourceStore    = "store"
	SourceRegistry = "registry"
	SourceMiss     = "miss"
	SourceError    = "error"
)

// Metrics counts verification verdicts and key lookups. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Verifications *prometheus.CounterVec
	KeyFetches    *prometheus.CounterVec
}

// NewMetrics creates the webhook counters and registers them with reg.
// A nil reg leaves them unregistered. Registering twice with the same
// registry panics, as with promauto.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Verifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trustkit",
				Subsystem: "webhook",
				Name:      "verifications_total",
				Help:      "Total number of webhook signature verifications by outcome.",
			},
			[]string{"outcome"},
		),
		KeyFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trustkit",
				Subsystem: "webhook",
				Name:      "key_fetches_total",
				Help:      "Total number of public key lookups by source.",
			},
			[]string{"source"},
		),
	}
}

// RecordVerification counts one verdict.
func (m *Metrics) RecordVerification(outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(outcome).Inc()
}

// RecordKeyFetch counts one key lookup.
func (m *Metrics) RecordKeyFetch(source string) {
	if m == nil {
		return
	}
	m.KeyFetches.WithLabelValues(source).Inc()
}
