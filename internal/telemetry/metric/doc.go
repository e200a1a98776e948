// Package metric provides Prometheus metrics for sipkv.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: the Registry, its counters, and the HTTP handler
//   - collector.go: a collector exporting the latest table statistics
//
// Metrics include:
//
//   - Connection accept/reject/close counters and an active gauge
//   - Command counters by verb and outcome
//   - Table entry, bucket, and growth figures
//
// The event loop publishes table statistics after it mutates the table; the
// HTTP handler only reads the published copy.
package metric
