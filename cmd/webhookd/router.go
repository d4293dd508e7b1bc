package main

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/trustkit/pkg/clientip"
	"github.com/dmitrymomot/trustkit/pkg/logger"
	"github.com/dmitrymomot/trustkit/pkg/ratelimiter"
	"github.com/dmitrymomot/trustkit/pkg/requestid"
	"github.com/dmitrymomot/trustkit/pkg/webhook"
)

const notificationPath = "/webhook"

type routerDeps struct {
	log        *slog.Logger
	verifier   *webhook.Verifier
	limiter    *ratelimiter.Limiter // nil disables limiting
	clientIP   *clientip.Resolver
	webhookCfg webhook.Config
	gatherer   prometheus.Gatherer
	readiness  http.Handler
	liveness   http.Handler
}

func newRouter(d routerDeps) http.Handler {
	if d.clientIP == nil {
		d.clientIP = clientip.New()
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware, d.clientIP.Middleware)

	r.Get("/metrics", promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/healthz", d.liveness.ServeHTTP)
	r.Get("/readyz", d.readiness.ServeHTTP)

	r.Route(notificationPath, func(r chi.Router) {
		if d.limiter != nil {
			r.Use(ratelimiter.Middleware(d.limiter, byClientIP, d.log))
		}
		if d.webhookCfg.VerificationToken != "" {
			r.Get("/", webhook.ChallengeHandler(d.webhookCfg.VerificationToken, d.webhookCfg.Endpoint))
		}
		r.With(webhook.Middleware(d.verifier, d.webhookCfg.MiddlewareOptions()...)).
			Post("/", acknowledge(d.log))
	})

	return r
}

func byClientIP(r *http.Request) string {
	return clientip.FromContext(r.Context())
}

// acknowledge accepts a verified notification. Processing is left to
// whatever consumes the logs or sits behind this receiver.
func acknowledge(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := io.Copy(io.Discard, r.Body)
		if err != nil {
			log.ErrorContext(r.Context(), "failed to read notification", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		log.InfoContext(r.Context(), "notification accepted", slog.Int64("bytes", n))
		w.WriteHeader(http.StatusNoContent)
	}
}
