// Package httpserver runs the ops listener of notifyd.
//
// Server wraps http.Server with context-driven graceful shutdown and is built
// with functional options or NewFromConfig. NewRouter returns a chi router
// exposing liveness, readiness and a manual sweep trigger:
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	router := httpserver.NewRouter(httpserver.RouterOptions{
//		Logger: log,
//		Probes: map[string]httpserver.Probe{"postgres": pg.Healthcheck(pool)},
//	})
//	g.Go(srv.RunFunc(ctx, router))
//
// Run returns when ctx is cancelled. Listen errors are joined with ErrStart
// and shutdown errors with ErrShutdown.
package httpserver
