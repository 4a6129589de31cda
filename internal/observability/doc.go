// Package observability provides structured logging, metrics, and tracing
// for the data generation service.
//
// This package implements:
//   - Zap logger construction from level and format settings
//   - Prometheus metrics for provider calls, circuit breakers, and admission control
//   - A shared OpenTelemetry tracer for the orchestration path
package observability
