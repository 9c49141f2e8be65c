// Package logging assembles the structured slog loggers used across clipforge.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so engine and orchestrator code
// automatically tags log lines with job and correlation identifiers. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
