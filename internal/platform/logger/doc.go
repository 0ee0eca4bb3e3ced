// Package logger provides structured logging functionality for the application.
//
// It uses the standard library log/slog package to emit JSON logs at a
// configurable level, and carries request-scoped loggers through
// context.Context so stores and services log with the request's trace ID.
package logger
