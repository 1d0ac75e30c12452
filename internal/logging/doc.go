// Package logging provides the structured logging interface shared by the
// coordinator, the workers and the command-line driver, backed by zerolog.
// Protocol code depends only on the Logger interface, so tests can run with
// NewNopLogger.
package logging
