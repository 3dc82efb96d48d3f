// Package logging assembles the structured slog loggers shared by shiftwalk
// commands and the workflow runner.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so workflow code can
// automatically tag log lines with run identifiers and step names. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
