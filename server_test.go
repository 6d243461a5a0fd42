package lspwire

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gossip-lsp/lspwire/jsonrpc"
	"github.com/gossip-lsp/lspwire/transport"
)

// packetTransport is a message-oriented transport fed from a slice.
type packetTransport struct {
	incoming []string
	sent     []string
	closed   bool
}

func (p *packetTransport) ReceivePacket() (string, error) {
	if len(p.incoming) == 0 {
		return "", io.ErrUnexpectedEOF
	}
	next := p.incoming[0]
	p.incoming = p.incoming[1:]
	return next, nil
}

func (p *packetTransport) SendPacket(packet []byte) error {
	p.sent = append(p.sent, string(packet))
	return nil
}

func (p *packetTransport) Close() error {
	p.closed = true
	return nil
}

var _ transport.Packet = (*packetTransport)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServeOverPacketTransport(t *testing.T) {
	s := NewServer("test", "0.0.1", WithLogger(discardLogger()))
	s.HandleRequest("ping", func(*Context, jsonrpc.RawMessage) (interface{}, error) {
		return "pong", nil
	})
	pt := &packetTransport{incoming: []string{
		`{"id":1,"method":"ping"}`,
		`{"method":"ignored"}`,
		`{"id":"two","method":"missing"}`,
	}}

	err := Serve(s, WithTransport(pt))
	if !jsonrpc.IsClosed(err) {
		t.Fatalf("Serve returned %v, want end of stream", err)
	}
	if !pt.closed {
		t.Error("transport was not closed")
	}
	if len(pt.sent) != 2 {
		t.Fatalf("sent %d replies, want 2: %q", len(pt.sent), pt.sent)
	}
	if pt.sent[0] != `{"jsonrpc":"2.0","id":1,"result":"pong"}` {
		t.Errorf("first reply = %s", pt.sent[0])
	}
	if !strings.Contains(pt.sent[1], `"id":"two"`) || !strings.Contains(pt.sent[1], `-32601`) {
		t.Errorf("second reply = %s, want MethodNotFound for id two", pt.sent[1])
	}
	if s.Endpoint() != nil || s.Client() != nil {
		t.Error("endpoint should be cleared after Serve returns")
	}
}

func TestServeStopsAfterCurrentMessage(t *testing.T) {
	s := NewServer("test", "0.0.1", WithLogger(discardLogger()))
	s.HandleNotification("exit", func(ctx *Context, _ jsonrpc.RawMessage) error {
		ctx.Stop()
		return nil
	})
	pt := &packetTransport{incoming: []string{`{"method":"exit"}`, `{"id":1,"method":"never"}`}}

	if err := Serve(s, WithTransport(pt)); err != nil {
		t.Fatalf("Serve returned %v, want nil", err)
	}
	if len(pt.sent) != 0 {
		t.Errorf("message after exit was handled: %q", pt.sent)
	}
}

func TestServeSurvivesUnencodableErrorData(t *testing.T) {
	s := NewServer("test", "0.0.1", WithLogger(discardLogger()))
	s.HandleRequest("bad", func(*Context, jsonrpc.RawMessage) (interface{}, error) {
		return nil, &jsonrpc.Error{Code: 1, Message: "x", Data: func() {}}
	})
	s.HandleRequest("ping", func(*Context, jsonrpc.RawMessage) (interface{}, error) {
		return "pong", nil
	})
	pt := &packetTransport{incoming: []string{
		`{"id":1,"method":"bad"}`,
		`{"id":2,"method":"ping"}`,
	}}

	if err := Serve(s, WithTransport(pt)); !jsonrpc.IsClosed(err) {
		t.Fatalf("Serve returned %v, want end of stream", err)
	}
	if len(pt.sent) != 2 {
		t.Fatalf("sent %d replies, want 2: %q", len(pt.sent), pt.sent)
	}
	if pt.sent[0] != `{"jsonrpc":"2.0","id":1,"error":{"code":-32603,"message":"x"}}` {
		t.Errorf("first reply = %s", pt.sent[0])
	}
	if pt.sent[1] != `{"jsonrpc":"2.0","id":2,"result":"pong"}` {
		t.Errorf("second reply = %s", pt.sent[1])
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args     []string
		factory  bool
		stream   bool
		settings string
		err      bool
	}{
		{args: []string{"--stdio"}, stream: true},
		{args: []string{"--tcp", ":9257"}, factory: true},
		{args: []string{"--ws=:9258", "--config", "lsp.toml"}, factory: true, settings: "lsp.toml"},
		{args: []string{"--config=x.toml", "--socket", "/tmp/s"}, factory: true, settings: "x.toml"},
		{args: []string{"--pipe"}, err: true},
		{args: []string{"--tcp", "--stdio"}, err: true},
		{args: []string{"--verbose", "--stdio"}, stream: true},
	}
	for _, tt := range tests {
		cfg := &serveConfig{}
		err := parseArgs(tt.args, cfg)
		if (err != nil) != tt.err {
			t.Errorf("%v: err = %v, want error %v", tt.args, err, tt.err)
			continue
		}
		if tt.err {
			continue
		}
		if (cfg.transportFactory != nil) != tt.factory {
			t.Errorf("%v: factory set = %v", tt.args, cfg.transportFactory != nil)
		}
		if (cfg.transport != nil) != tt.stream {
			t.Errorf("%v: transport set = %v", tt.args, cfg.transport != nil)
		}
		if cfg.settingsPath != tt.settings {
			t.Errorf("%v: settings = %q, want %q", tt.args, cfg.settingsPath, tt.settings)
		}
	}
}

func TestServeReportsArgumentErrors(t *testing.T) {
	s := NewServer("test", "0.0.1", WithLogger(discardLogger()))
	err := Serve(s, func(cfg *serveConfig) { cfg.err = parseArgs([]string{"--socket"}, cfg) })
	if err == nil || !strings.Contains(err.Error(), "--socket requires a value") {
		t.Errorf("got %v", err)
	}
}

func TestToRPCError(t *testing.T) {
	custom := jsonrpc.NewError(jsonrpc.CodeContentModified, "stale")
	if got := toRPCError(custom); got != custom {
		t.Errorf("custom error was replaced: %+v", got)
	}
	wrapped := toRPCError(errors.Join(errors.New("context"), custom))
	if wrapped.Code != jsonrpc.CodeContentModified {
		t.Errorf("wrapped error code = %d", wrapped.Code)
	}
	if got := toRPCError(errors.New("plain")); got.Code != jsonrpc.CodeInternalError || got.Message != "plain" {
		t.Errorf("plain error = %+v", got)
	}
}

func TestSettingsDefaultWithoutFile(t *testing.T) {
	s := NewServer("test", "0.0.1")
	if got := s.Settings(); !got.Session.FailureReplies || got.Framing.MaxContentLength != 0 {
		t.Errorf("settings = %+v", got)
	}
}

func TestSettingsReloadUpdatesRunningServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lspwire.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewServer("test", "0.0.1", WithLogger(discardLogger()))
	bridge, err := s.loadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	defer bridge.close()
	s.settings = bridge

	pt := &packetTransport{}
	ep := jsonrpc.NewEndpoint(pt)
	s.endpoint.Store(ep)

	if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n[session]\nfailure_replies = false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := bridge.reloader.Reload(); err != nil {
		t.Fatal(err)
	}
	if got := s.levelVar.Level(); got != slog.LevelDebug {
		t.Errorf("level = %v, want debug", got)
	}
	if s.Settings().Session.FailureReplies {
		t.Error("settings still report failure replies enabled")
	}

	// With failure replies off, a bad request with an id gets no reply.
	pt.incoming = []string{`{"id":1,"method":5}`}
	if _, err := ep.ReadMessage(); !jsonrpc.IsClosed(err) {
		t.Fatalf("ReadMessage returned %v, want end of stream", err)
	}
	if len(pt.sent) != 0 {
		t.Errorf("reply sent with failure replies disabled: %q", pt.sent)
	}
}
