// Package server provides the HTTP server for the transfer-agent.
//
// The server uses the Gin web framework. It serves the API registered by the
// caller under /api/v1, a health check and the Prometheus metrics of the
// worker pool.
//
// # Architecture Overview
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                         HTTP Server                           │
//	├───────────────────────────────────────────────────────────────┤
//	│                       Middleware Stack                        │
//	│  ┌─────────────────────────────────────────────────────────┐  │
//	│  │  ginzap.Ginzap (request/response logging)               │  │
//	│  │  ginzap.RecoveryWithZap (panic recovery with zap)       │  │
//	│  └─────────────────────────────────────────────────────────┘  │
//	├───────────────────────────────────────────────────────────────┤
//	│  /health          liveness check                              │
//	│  /metrics         promhttp over the given gatherer            │
//	│  /api/v1          handlers registered via callback            │
//	└───────────────────────────────────────────────────────────────┘
//
// # Server Modes
//
// Development Mode (ServerMode = "dev"):
//   - Gin runs in debug mode and prints its routes
//
// Production Mode (ServerMode = "prod"):
//   - Gin runs in release mode
//
// Unknown routes return a JSON 404 in both modes.
//
// # Server Lifecycle
//
// Creation:
//
//	srv, err := server.NewServer(cfg, registry, func(router *gin.RouterGroup) {
//	    v1.RegisterHandlers(router, handler)
//	})
//
// The registerHandlerFn callback receives a RouterGroup prefixed with /api/v1.
// A nil gatherer disables /metrics.
//
// Starting:
//
//	// Blocks until error or shutdown
//	err := srv.Start(ctx)
//
// Stopping:
//
//	srv.Stop(ctx)
//
// Performs graceful shutdown, waiting for in-flight requests to complete.
// Start returns nil once Stop was called.
package server
