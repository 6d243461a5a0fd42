package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gossip-lsp/lspwire/jsonrpc"
)

// Recovery returns middleware that recovers from panics in handlers,
// logs the stack trace, and returns an internal error to the client.
func Recovery(logger ...*slog.Logger) Middleware {
	var log *slog.Logger
	if len(logger) > 0 && logger[0] != nil {
		log = logger[0]
	} else {
		log = slog.Default()
	}

	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (result interface{}, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler",
						"method", call.Method,
						"id", call.ID.String(),
						"panic", fmt.Sprint(r),
						"stack", string(debug.Stack()),
					)
					result = nil
					err = jsonrpc.NewError(jsonrpc.CodeInternalError, fmt.Sprintf("internal error: %v", r))
				}
			}()
			return next(ctx, call)
		}
	}
}
