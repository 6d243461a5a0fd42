package lspwire

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gossip-lsp/lspwire/config"
	"github.com/gossip-lsp/lspwire/jsonrpc"
	mw "github.com/gossip-lsp/lspwire/middleware"
)

// Server registers handlers and dispatches incoming messages to them.
type Server struct {
	name    string
	version string

	logger       *slog.Logger
	levelVar     *slog.LevelVar
	customLogger bool

	// set during Serve
	endpoint atomic.Pointer[jsonrpc.Endpoint]
	client   atomic.Pointer[ClientProxy]

	// settings file (nil unless one was configured)
	settings *settingsBridge

	middlewares []mw.Middleware

	mu               sync.RWMutex
	rawHandlers      map[string]RawHandler
	rawNotifHandlers map[string]RawNotificationHandler

	stopped atomic.Bool
}

// NewServer creates a server with the given name and version.
func NewServer(name, version string, opts ...Option) *Server {
	levelVar := new(slog.LevelVar)
	s := &Server{
		name:             name,
		version:          version,
		levelVar:         levelVar,
		logger:           slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar})),
		rawHandlers:      make(map[string]RawHandler),
		rawNotifHandlers: make(map[string]RawNotificationHandler),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Name returns the server name.
func (s *Server) Name() string { return s.name }

// Version returns the server version.
func (s *Server) Version() string { return s.version }

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger { return s.logger }

// Endpoint returns the active endpoint, or nil outside Serve.
func (s *Server) Endpoint() *jsonrpc.Endpoint { return s.endpoint.Load() }

// Client returns the proxy for the connected peer, or nil outside Serve.
func (s *Server) Client() *ClientProxy { return s.client.Load() }

// Settings returns the current settings. Without a settings file these are
// config.Defaults().
func (s *Server) Settings() config.Settings {
	if s.settings != nil {
		return *s.settings.store.Get()
	}
	return config.Defaults()
}

// Stop makes Serve return nil once the message being handled is done.
func (s *Server) Stop() { s.stopped.Store(true) }

// HandleRequest registers a raw handler for a request method.
func (s *Server) HandleRequest(method string, h RawHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawHandlers[method] = h
}

// HandleNotification registers a raw handler for a notification method.
func (s *Server) HandleNotification(method string, h RawNotificationHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawNotifHandlers[method] = h
}

// dispatch is the innermost middleware.Handler. It routes a call to the
// registered handler for its method.
func (s *Server) dispatch(ctx context.Context, call *mw.Call) (interface{}, error) {
	gctx := newContext(ctx, s, call)

	if call.IsNotification() {
		s.mu.RLock()
		h, ok := s.rawNotifHandlers[call.Method]
		s.mu.RUnlock()
		if !ok {
			s.logger.Debug("ignoring notification", "method", call.Method)
			return nil, nil
		}
		return nil, h(gctx, call.Params)
	}

	s.mu.RLock()
	h, ok := s.rawHandlers[call.Method]
	s.mu.RUnlock()
	if !ok {
		return nil, jsonrpc.NewError(jsonrpc.CodeMethodNotFound, fmt.Sprintf("method not found: %s", call.Method))
	}
	return h(gctx, call.Params)
}
