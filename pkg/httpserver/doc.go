// Package httpserver runs an http.Handler with sane timeouts, structured
// logging and graceful shutdown.
//
//	srv := httpserver.New(append(cfg.Options(), httpserver.WithLogger(log))...)
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// Run returns once ctx is cancelled and in-flight requests have drained (or
// the shutdown timeout has passed). Start and stop hooks receive the actual
// listen address, which is useful with ":0" in tests.
//
// HealthCheckHandler serves liveness (no checks) and readiness probes:
//
//	r.Get("/healthz", httpserver.HealthCheckHandler(log, time.Second))
//	r.Get("/readyz", httpserver.HealthCheckHandler(log, time.Second, redis.Healthcheck(client)))
package httpserver
