// Package logging assembles structured slog loggers for reelchain.
//
// It owns the console and JSON handlers, routes output to stdout and a
// rotating file under the log directory, and exposes context-aware helpers so
// generation code tags every line with its generation and request ids. A
// no-op logger is provided for tests and optional wiring.
package logging
