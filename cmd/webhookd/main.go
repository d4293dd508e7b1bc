// Command webhookd receives signed provider notifications, verifies their
// ECDSA signatures against the provider's key registry and acknowledges them.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/trustkit/pkg/clientip"
	"github.com/dmitrymomot/trustkit/pkg/config"
	"github.com/dmitrymomot/trustkit/pkg/httpserver"
	"github.com/dmitrymomot/trustkit/pkg/logger"
	"github.com/dmitrymomot/trustkit/pkg/ratelimiter"
	"github.com/dmitrymomot/trustkit/pkg/redis"
	"github.com/dmitrymomot/trustkit/pkg/requestid"
	"github.com/dmitrymomot/trustkit/pkg/webhook"
)

type appConfig struct {
	RedisEnabled        bool          `env:"REDIS_ENABLED" envDefault:"false"`       // Share keys and rate limits through redis
	ProbeTimeout        time.Duration `env:"HEALTHCHECK_TIMEOUT" envDefault:"2s"`    // Readiness check budget
	TrustedProxyHeaders []string      `env:"TRUSTED_PROXY_HEADERS" envSeparator:","` // Client address headers set by the proxy, e.g. X-Forwarded-For
	TrustedProxies      []string      `env:"TRUSTED_PROXIES" envSeparator:","`       // CIDRs or addresses of proxies allowed to set those headers
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		logCfg    logger.Config
		serverCfg httpserver.Config
		limitCfg  ratelimiter.Config
		appCfg    appConfig
	)
	if err := errors.Join(
		config.Load(&logCfg),
		config.Load(&serverCfg),
		config.Load(&limitCfg),
		config.Load(&appCfg),
	); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log := logger.New(append(logCfg.Options(),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	)...)

	webhookCfg, err := webhook.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading webhook configuration: %w", err)
	}

	proxies, err := clientip.ParsePrefixes(appCfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("parsing TRUSTED_PROXIES: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := webhook.NewMetrics(reg)

	registryOpts := []webhook.RegistryOption{
		webhook.WithRegistryLogger(log),
		webhook.WithRegistryMetrics(metrics),
	}
	var (
		checks     []httpserver.Check
		limitStore ratelimiter.Store
	)
	if appCfg.RedisEnabled {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return fmt.Errorf("loading redis configuration: %w", err)
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer client.Close()

		registryOpts = append(registryOpts, webhook.WithKeyStore(redis.NewKeyStoreWithConfig(client, redisCfg)))
		checks = append(checks, redis.Healthcheck(client))
		limitStore = redis.NewRateLimitStore(client, redisCfg.RateLimitPrefix)
	} else {
		mem := ratelimiter.NewMemoryStore(time.Minute, time.Hour)
		defer mem.Close()
		limitStore = mem
	}

	var limiter *ratelimiter.Limiter
	if limitCfg.Enabled {
		if limiter, err = ratelimiter.New(limitStore, limitCfg); err != nil {
			return fmt.Errorf("creating rate limiter: %w", err)
		}
	}

	registry, err := webhook.NewRegistryClient(webhookCfg, registryOpts...)
	if err != nil {
		return fmt.Errorf("creating key registry client: %w", err)
	}

	verifier := webhook.NewVerifier(registry, append(webhookCfg.VerifierOptions(),
		webhook.WithLogger(log),
		webhook.WithMetrics(metrics),
	)...)

	resolver := clientip.New(
		clientip.WithHeaders(appCfg.TrustedProxyHeaders...),
		clientip.WithTrustedProxies(proxies...),
	)

	router := newRouter(routerDeps{
		log:        log,
		verifier:   verifier,
		limiter:    limiter,
		clientIP:   resolver,
		webhookCfg: webhookCfg,
		gatherer:   reg,
		readiness:  httpserver.HealthCheckHandler(log, appCfg.ProbeTimeout, checks...),
		liveness:   httpserver.HealthCheckHandler(log, appCfg.ProbeTimeout),
	})

	srv := httpserver.New(append(serverCfg.Options(),
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(addr string, l *slog.Logger) {
			l.Info("webhook receiver listening",
				slog.String("addr", addr),
				slog.String("registry", webhookCfg.RegistryURL),
				slog.Bool("redis", appCfg.RedisEnabled),
			)
		}),
	)...)

	return srv.Run(ctx, router)
}
