// Package server exposes the process's Prometheus metrics and a health check
// over HTTP while a product runs.
package server
