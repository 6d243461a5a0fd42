// Package middleware provides composable middleware for lspwire servers.
// Middleware wraps the dispatch of every incoming request and notification,
// allowing cross-cutting concerns like logging, panic recovery, and metrics
// to be applied to all handlers.
package middleware

import (
	"context"

	"github.com/gossip-lsp/lspwire/jsonrpc"
)

// Call is one dispatched message. ID is null for notifications.
type Call struct {
	Method string
	Params jsonrpc.RawMessage
	ID     jsonrpc.ID
}

// IsNotification reports whether the call expects no reply.
func (c *Call) IsNotification() bool { return !c.ID.IsValid() }

// Kind returns "request" or "notification".
func (c *Call) Kind() string {
	if c.IsNotification() {
		return "notification"
	}
	return "request"
}

// Handler processes a dispatched call and returns a result. For
// notifications the result is discarded.
type Handler func(ctx context.Context, call *Call) (interface{}, error)

// Middleware wraps a Handler to add cross-cutting behavior.
type Middleware func(Handler) Handler

// Chain composes multiple middleware into a single middleware.
// Middleware is applied in the order given: the first middleware in the slice
// is the outermost wrapper (executes first).
func Chain(mws ...Middleware) Middleware {
	return func(next Handler) Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
