// Package logging builds the zap logger used by the server and a middleware
// logging field resolution failures.
package logging

import (
	"context"
	"fmt"
	"time"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	reqid "github.com/hanpama/gqlcore/internal/reqid"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing at level ("debug", "info", "warn", "error").
// Development loggers use the console encoder; others emit JSON.
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// RequestFields returns the fields identifying the request carried by ctx.
func RequestFields(ctx context.Context) []zap.Field {
	if id, ok := reqid.FromContext(ctx); ok {
		return []zap.Field{zap.String("request_id", id)}
	}
	return nil
}

// FieldLogging logs every failed field resolution at debug level, and field
// resolutions slower than slow at info level. A zero slow disables the
// latter.
func FieldLogging(logger *zap.Logger, slow time.Duration) schema.Middleware {
	return func(ctx context.Context, inv *schema.FieldInvocation, next schema.NextFunc) (any, error) {
		start := time.Now()
		v, err := next(ctx)
		elapsed := time.Since(start)

		if err == nil && (slow == 0 || elapsed < slow) {
			return v, nil
		}
		fields := append(RequestFields(ctx),
			zap.String("field", inv.ParentType.Name+"."+inv.Field.Name),
			zap.Duration("elapsed", elapsed),
		)
		if fc := schema.GetFieldContext(ctx); fc != nil {
			fields = append(fields, zap.Any("path", fc.Path))
		}
		switch {
		case err != nil:
			_, local := gqlerrors.AsExecutionError(err)
			fields = append(fields, zap.Error(err), zap.Bool("field_error", local))
			logger.Debug("field resolution failed", fields...)
		default:
			logger.Info("slow field resolution", fields...)
		}
		return v, err
	}
}
