package lspwire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gossip-lsp/lspwire/jsonrpc"
	mw "github.com/gossip-lsp/lspwire/middleware"
	"github.com/gossip-lsp/lspwire/transport"
)

// Serve starts the server using the given transport options.
// If no ServeOption is provided, stdio is used by default.
//
// Messages are handled one at a time: a request's reply is sent before the
// next message is read. Serve returns nil after Stop, otherwise the error
// that ended the stream.
func Serve(s *Server, opts ...ServeOption) error {
	cfg := &serveConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.err != nil {
		return fmt.Errorf("parsing arguments: %w", cfg.err)
	}

	if cfg.settingsPath != "" {
		bridge, err := s.loadSettings(cfg.settingsPath)
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		s.settings = bridge
		defer bridge.close()
	}
	settings := s.Settings()
	s.levelVar.Set(settings.SlogLevel())
	if !s.customLogger && settings.JSONLogs() {
		s.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: s.levelVar}))
	}

	if cfg.transport == nil && cfg.transportFactory != nil {
		var err error
		cfg.transport, err = cfg.transportFactory()
		if err != nil {
			return fmt.Errorf("creating transport: %w", err)
		}
	}
	if cfg.transport == nil {
		cfg.transport = transport.Stdio()
	}
	defer cfg.transport.Close()

	var wire jsonrpc.Transport
	switch t := cfg.transport.(type) {
	case transport.Packet:
		wire = t
	case transport.Stream:
		wire = jsonrpc.NewCodec(t, t, jsonrpc.WithMaxContentLength(settings.Framing.MaxContentLength))
	default:
		return fmt.Errorf("transport %T is neither a stream nor a packet transport", cfg.transport)
	}

	ep := jsonrpc.NewEndpoint(wire,
		jsonrpc.WithEndpointLogger(s.logger),
		jsonrpc.WithFailureReplies(settings.Session.FailureReplies),
	)
	s.endpoint.Store(ep)
	s.client.Store(newClientProxy(ep))
	defer func() {
		s.endpoint.Store(nil)
		s.client.Store(nil)
	}()

	handler := mw.Handler(s.dispatch)
	if len(s.middlewares) > 0 {
		handler = mw.Chain(s.middlewares...)(handler)
	}

	s.logger.Info("lspwire server starting",
		"name", s.name,
		"version", s.version,
		"session", ep.SessionID(),
	)

	s.stopped.Store(false)
	ctx := context.Background()
	for !s.stopped.Load() {
		msg, err := ep.ReadMessage()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		if err := s.handle(ctx, handler, msg); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}
	s.logger.Info("lspwire server stopped", "session", ep.SessionID())
	return nil
}

// handle runs one message through the handler chain and sends the reply a
// request is owed. Only transport failures are returned.
func (s *Server) handle(ctx context.Context, handler mw.Handler, msg jsonrpc.Message) error {
	switch m := msg.(type) {
	case *jsonrpc.Notification:
		call := &mw.Call{Method: m.Method, Params: m.Params}
		if _, err := handler(ctx, call); err != nil {
			s.logger.Warn("notification handler failed", "method", m.Method, "error", err)
		}
		return nil

	case *jsonrpc.Request:
		call := &mw.Call{Method: m.Method, Params: m.Params, ID: m.ID}
		result, err := handler(ctx, call)
		if err != nil {
			err = m.Response.Failure(toRPCError(err))
		} else {
			err = m.Response.Success(result)
		}
		if errors.Is(err, jsonrpc.ErrInvalidResult) {
			// The peer already got an InternalError in its place.
			s.logger.Error("handler reply could not be encoded", "method", m.Method, "id", m.ID.String(), "error", err)
			return nil
		}
		return err
	}
	return nil
}

func toRPCError(err error) *jsonrpc.Error {
	var rpcErr *jsonrpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return jsonrpc.NewError(jsonrpc.CodeInternalError, err.Error())
}
