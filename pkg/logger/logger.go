// Package logger provides a structured, levelled logger built on log/slog.
//
// Handlers are chosen by environment: human-readable text in development,
// JSON on stdout in production, optionally fanned out to MongoDB for log
// aggregation (see mongo_handler.go). WithCtx returns a logger pre-tagged
// with the request ID injected by the HTTP middleware, so every log line
// from a handler is automatically correlated:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("item created", "item_id", item.ID)
//	// → time=... level=INFO msg="item created" request_id=a1b2c3d4 item_id=...
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/matjarhq/matjar/config"
)

var (
	L     *slog.Logger
	mongo *MongoHandler
)

func init() {
	var handler slog.Handler

	switch config.AppEnv() {
	case "production", "prod":
		opts := &slog.HandlerOptions{Level: slog.LevelInfo}
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		opts := &slog.HandlerOptions{Level: slog.LevelDebug}
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	if uri := config.MongoLogURI(); uri != "" {
		if mh, err := NewMongoHandler(uri, config.MongoLogDatabase(), handler); err == nil {
			handler = mh
			mongo = mh
		}
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// Close flushes any buffered log records. Safe to call when no Mongo sink
// is configured.
func Close() {
	if mongo != nil {
		mongo.Close() //nolint:errcheck
	}
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the per-request *slog.Logger stored in ctx by the Logger
// middleware, or the base logger when none is present.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the Logger middleware — not usually needed in application code.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level on the base logger.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level on the base logger.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level on the base logger.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level on the base logger.
func Error(msg string, args ...any) { L.Error(msg, args...) }
