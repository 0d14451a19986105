package database

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const tracerName = "github.com/utafrali/storefront/pkg/database"

type slowCommandConfig struct {
	threshold time.Duration
	logger    *slog.Logger
}

var slowCommands atomic.Pointer[slowCommandConfig]

// SetSlowCommandLogging logs commands that take at least threshold as
// warnings. A zero threshold or nil logger turns it off.
func SetSlowCommandLogging(threshold time.Duration, logger *slog.Logger) {
	if threshold <= 0 || logger == nil {
		slowCommands.Store(nil)
		return
	}
	slowCommands.Store(&slowCommandConfig{threshold: threshold, logger: logger})
}

// TraceCommand starts a client span for a redis command. Call the returned
// function with the command's error when it completes:
//
//	ctx, end := database.TraceCommand(ctx, "GET", "storefront:favorites")
//	defer func() { end(err) }()
//
// A not-found error marks a cache miss instead of failing the span.
func TraceCommand(ctx context.Context, operation, key string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "redis."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", operation),
			attribute.String("db.redis.key", key),
		),
	)

	return ctx, func(err error) {
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrNotFound):
			span.SetAttributes(attribute.Bool("db.redis.miss", true))
			err = nil
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		logIfSlow(ctx, operation, key, time.Since(start), err)
	}
}

func logIfSlow(ctx context.Context, operation, key string, elapsed time.Duration, err error) {
	cfg := slowCommands.Load()
	if cfg == nil || elapsed < cfg.threshold {
		return
	}
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("key", key),
		slog.Duration("duration", elapsed),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	cfg.logger.LogAttrs(ctx, slog.LevelWarn, "slow redis command", attrs...)
}
