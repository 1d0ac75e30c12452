// Package metrics records dispatch-loop and runtime statistics.
//
// DispatchMetrics plugs into the coordinator as a matmul.Observer and exports
// Prometheus collectors. SystemCollector exposes host CPU and memory usage at
// scrape time. MemoryCollector takes runtime memory snapshots for the verbose
// run summary.
package metrics
