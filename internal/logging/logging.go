// Package logging configures the process-wide slog logger and carries
// request-scoped loggers through context.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type ctxKey struct{}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Init installs the default logger: text output for local development,
// JSON everywhere else. Unknown level names fall back to info.
func Init(service, level, appEnv string) *slog.Logger {
	lvl, ok := levels[strings.ToLower(level)]
	if !ok {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if appEnv == "development" {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", service)
	slog.SetDefault(logger)
	return logger
}

// FromContext returns the request-scoped logger, or the default one when
// the context carries none.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}
