// Package observability provides structured logging, Prometheus metrics,
// health checks, and OpenTelemetry tracing for the navigation service.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("org", slug).Info("Org bound")
//
// Loggers are immutable; WithField/WithFields/WithError return derived
// loggers. FromContext picks up the request and session ids placed on the
// context by the HTTP middleware.
//
// # Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//
// # Health
//
// NewHealthChecker wires liveness and readiness probes; redis is treated as
// optional (degraded, not unhealthy) because the file store fallback keeps
// the resolver serving.
//
// # Tracing
//
// InitOTel exports spans over OTLP/gRPC when enabled. Metrics stay on
// Prometheus; only traces go through OpenTelemetry.
package observability
