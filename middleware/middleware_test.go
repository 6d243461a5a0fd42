package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gossip-lsp/lspwire/jsonrpc"
)

func echo(_ context.Context, call *Call) (interface{}, error) {
	return call.Method, nil
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, call *Call) (interface{}, error) {
				order = append(order, name)
				return next(ctx, call)
			}
		}
	}
	h := Chain(mark("outer"), mark("inner"))(echo)
	if _, err := h(context.Background(), &Call{Method: "m"}); err != nil {
		t.Fatal(err)
	}
	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order = %v", order)
	}
}

func TestRecoveryTurnsPanicIntoInternalError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := Recovery(logger)(func(context.Context, *Call) (interface{}, error) {
		panic("boom")
	})

	result, err := h(context.Background(), &Call{Method: "hover", ID: jsonrpc.IntID(1)})
	if result != nil {
		t.Errorf("result = %v, want nil", result)
	}
	var rpcErr *jsonrpc.Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != jsonrpc.CodeInternalError {
		t.Fatalf("got %v, want InternalError", err)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestLoggingRecordsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := Logging(logger)(func(context.Context, *Call) (interface{}, error) {
		return nil, errors.New("nope")
	})
	h(context.Background(), &Call{Method: "hover", ID: jsonrpc.IntID(9)})

	out := buf.String()
	for _, want := range []string{"call failed", "method=hover", "kind=request", "id=9", "error=nope"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestTelemetryCountsKinds(t *testing.T) {
	m := NewMetrics()
	h := Telemetry(m)(echo)
	h(context.Background(), &Call{Method: "a", ID: jsonrpc.IntID(1)})
	h(context.Background(), &Call{Method: "a", ID: jsonrpc.IntID(2)})
	h(context.Background(), &Call{Method: "a"})

	snap := m.Snapshot()["a"]
	if snap.Requests != 2 || snap.Notifications != 1 || snap.Errors != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestTracingStoresCall(t *testing.T) {
	var seen *Call
	h := Tracing()(func(ctx context.Context, call *Call) (interface{}, error) {
		seen = CallFrom(ctx)
		return nil, nil
	})
	call := &Call{Method: "textDocument/hover", ID: jsonrpc.IntID(5)}
	h(context.Background(), call)
	if seen != call {
		t.Errorf("CallFrom = %v, want %v", seen, call)
	}
	if TraceMethod(context.Background()) != "" {
		t.Error("TraceMethod on bare context should be empty")
	}
}
