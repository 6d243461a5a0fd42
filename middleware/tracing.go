package middleware

import "context"

// Tracing returns middleware that stores the current call in the context so
// code further down the chain can tag its work with the method and id.
func Tracing() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (interface{}, error) {
			ctx = context.WithValue(ctx, callKey{}, call)
			return next(ctx, call)
		}
	}
}

type callKey struct{}

// CallFrom returns the call stored by Tracing, or nil.
func CallFrom(ctx context.Context) *Call {
	c, _ := ctx.Value(callKey{}).(*Call)
	return c
}

// TraceMethod returns the method name from the context, if set by Tracing middleware.
func TraceMethod(ctx context.Context) string {
	if c := CallFrom(ctx); c != nil {
		return c.Method
	}
	return ""
}
