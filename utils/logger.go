package utils

import (
	"log/slog"
)

// Log provides structured logging with subsystem identification
// Example usage:
//
//	utils.Log(slog.LevelDebug, "poller", "Tick", "order_id", orderID, "status", status)
//	utils.Log(slog.LevelInfo, "gateway", "Payment link loaded", "payment_id", paymentID)
func Log(level slog.Level, subsystem string, msg string, keysAndValues ...interface{}) {
	attrs := []slog.Attr{
		slog.String("subsystem", subsystem),
	}

	// Convert key-value pairs to slog attributes
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			key := keysAndValues[i].(string)
			value := keysAndValues[i+1]
			attrs = append(attrs, slog.Any(key, value))
		}
	}

	slog.LogAttrs(nil, level, msg, attrs...)
}

// Convenience functions for common log levels
func Debug(subsystem string, msg string, keysAndValues ...interface{}) {
	Log(slog.LevelDebug, subsystem, msg, keysAndValues...)
}

func Info(subsystem string, msg string, keysAndValues ...interface{}) {
	Log(slog.LevelInfo, subsystem, msg, keysAndValues...)
}

func Warn(subsystem string, msg string, keysAndValues ...interface{}) {
	Log(slog.LevelWarn, subsystem, msg, keysAndValues...)
}

func Error(subsystem string, msg string, keysAndValues ...interface{}) {
	Log(slog.LevelError, subsystem, msg, keysAndValues...)
}
