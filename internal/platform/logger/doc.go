// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured
// logging with configurable log levels. The server logs JSON and the CLI logs
// text. A request-scoped logger can be carried in a context.
package logger
