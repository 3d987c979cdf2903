// Package logging builds the slog loggers used by the commands and adapts
// acquisition progress events to them.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/handiism/ultimate-tab/internal/acquire"
)

// New creates a slog.Logger writing to w. level is one of debug, info,
// warn or error (default info); format is text or json (default text).
// It does not set the global logger.
func New(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler

	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(handler)
}

// ProgressHandler returns an acquire progress callback that logs each event.
// Verbose events are logged at debug level, successes at info.
func ProgressHandler(logger *slog.Logger) func(acquire.ProgressEvent) {
	return func(e acquire.ProgressEvent) {
		attrs := []any{slog.String("url", e.URL), slog.String("state", e.State.String())}
		if e.Attempt != nil {
			attrs = append(attrs,
				slog.String("strategy", e.Attempt.Strategy),
				slog.Int("attempt", e.Attempt.Number),
			)
			if e.Attempt.Reason != "" {
				attrs = append(attrs, slog.String("reason", e.Attempt.Reason))
			}
		}
		logger.Log(context.Background(), levelFor(e.Level), e.Message, attrs...)
	}
}

func levelFor(l acquire.ProgressLevel) slog.Level {
	switch l {
	case acquire.LevelVerbose:
		return slog.LevelDebug
	case acquire.LevelWarning:
		return slog.LevelWarn
	case acquire.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
