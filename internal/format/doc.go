// Package format holds pure formatting helpers shared by the CLI: durations,
// ETAs, counts, byte sizes and a cell-level progress tracker.
package format
