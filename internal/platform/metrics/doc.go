// Package metrics declares the Prometheus collectors for the ingestion
// pipeline and the handler that exposes them.
package metrics
