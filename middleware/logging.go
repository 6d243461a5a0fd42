package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that logs each call's method, id, duration, and errors.
func Logging(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (interface{}, error) {
			start := time.Now()
			result, err := next(ctx, call)
			duration := time.Since(start)

			attrs := []slog.Attr{
				slog.String("method", call.Method),
				slog.String("kind", call.Kind()),
				slog.Duration("duration", duration),
			}
			if !call.IsNotification() {
				attrs = append(attrs, slog.String("id", call.ID.String()))
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "call failed", attrs...)
			} else {
				logger.LogAttrs(ctx, slog.LevelDebug, "call handled", attrs...)
			}

			return result, err
		}
	}
}
