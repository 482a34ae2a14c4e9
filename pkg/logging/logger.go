// Package logging configures log/slog for the client and CLI and carries a
// per-operation request id through context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type requestIDKey struct{}

// Setup installs the default slog logger.
//
// Level values: "debug", "info", "warn", "error".
// Format values: "text", "json".
func Setup(level, format string, w io.Writer) (err error) {
	var lvl slog.Level
	lvl, err = ParseLevel(level)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		err = errors.Errorf("unknown log format %q: must be 'text' or 'json'", format)
		return err
	}

	slog.SetDefault(slog.New(handler))
	return err
}

// ParseLevel converts a level name to slog.Level. An empty name means info.
func ParseLevel(level string) (lvl slog.Level, err error) {
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		err = errors.Errorf("unknown log level %q", level)
	}
	return lvl, err
}

// WithRequestID returns ctx carrying a fresh request id, unless it already has one.
func WithRequestID(ctx context.Context) (out context.Context) {
	if RequestID(ctx) != "" {
		out = ctx
		return out
	}
	out = context.WithValue(ctx, requestIDKey{}, uuid.NewString())
	return out
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) (id string) {
	id, _ = ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns the default logger, tagged with request_id when ctx carries one.
func FromContext(ctx context.Context) (logger *slog.Logger) {
	logger = slog.Default()
	if id := RequestID(ctx); id != "" {
		logger = logger.With("request_id", id)
	}
	return logger
}

// WithFields returns a context logger with additional structured fields.
func WithFields(ctx context.Context, args ...any) (logger *slog.Logger) {
	logger = FromContext(ctx).With(args...)
	return logger
}
