// Package observability provides structured logging and Prometheus metrics
// for the versioning engine.
//
// Logging uses stdlib slog behind a small wrapper supporting chained
// WithField/WithError context and context.Context propagation. Metrics
// cover the engine's moving parts: analyses run, changes detected by
// impact, bumps accepted or rejected, matrix builds and cache behavior,
// and migration executions and rollbacks.
package observability
