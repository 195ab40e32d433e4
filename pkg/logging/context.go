package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const loggerKey contextKey = iota

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithField adds a single string field to the logger in the context.
func WithField(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithService tags the context logger with the remote service being written to.
func WithService(ctx context.Context, service string) context.Context {
	return WithField(ctx, "service", service)
}

// WithItem tags the context logger with the match row being processed.
func WithItem(ctx context.Context, qid string, osmID int64) context.Context {
	logger := FromContext(ctx).With().
		Str("qid", qid).
		Int64("osm_id", osmID).
		Logger()
	return WithLogger(ctx, &logger)
}
