package logging

import (
	"log/slog"
	"os"
)

// Logger is the application-wide structured logger instance. It starts
// as the process default so library consumers and tests get a working
// logger without calling InitLogger.
var Logger = slog.Default()

// InitLogger initializes the global logger with the specified level and format.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
func InitLogger(level, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// WithTicket returns a logger with ticket_id field.
func WithTicket(ticketID string) *slog.Logger {
	return Logger.With("ticket_id", ticketID)
}

// WithSink returns a logger with sink field.
func WithSink(sink string) *slog.Logger {
	return Logger.With("sink", sink)
}

// WithError returns a logger with error field.
func WithError(err error) *slog.Logger {
	return Logger.With("error", err)
}
