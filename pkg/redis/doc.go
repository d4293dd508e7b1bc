// Package redis connects to Redis with retries and provides KeyStore, a
// shared second-level cache for webhook public keys, and RateLimitStore.
//
// Configuration is described by Config and is normally populated from
// REDIS_* environment variables:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		// redis.ErrRedisNotReady after RetryAttempts failed pings
//	}
//	defer client.Close()
//
// KeyStore satisfies webhook.KeyStore:
//
//	store := redis.NewKeyStoreWithConfig(client, cfg)
//	registry, err := webhook.NewRegistryClient(webhookCfg, webhook.WithKeyStore(store))
//
// RateLimitStore lets every receiver replica draw from the same buckets:
//
//	limiter, err := ratelimiter.New(redis.NewRateLimitStore(client, cfg.RateLimitPrefix), limitCfg)
//
// Healthcheck adapts a client to an httpserver readiness check:
//
//	httpserver.HealthCheckHandler(log, time.Second, redis.Healthcheck(client))
package redis
