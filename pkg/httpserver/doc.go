// Package httpserver runs an http.Handler with configurable timeouts and
// graceful shutdown.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server stopped", logger.Error(err))
//	}
//
// Run blocks until ctx is cancelled (typically by signal.NotifyContext),
// then drains in-flight requests for at most the shutdown timeout. Long-lived
// responses such as toast SSE streams observe the same cancellation through
// the server's base context, so they end promptly instead of holding shutdown
// open.
//
// HealthCheckHandler serves liveness and readiness probes.
package httpserver
