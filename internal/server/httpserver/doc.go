// Package httpserver serves the sipkv admin endpoints over HTTP.
//
// The admin listener is separate from the query listener and never touches
// the table. It exposes:
//
//	GET /metrics   Prometheus exposition of the metric registry
//	GET /health    liveness
//	GET /ready     503 until the event loop is running
//	GET /version   build information
package httpserver
