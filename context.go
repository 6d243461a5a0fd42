package lspwire

import (
	"context"
	"log/slog"

	"github.com/gossip-lsp/lspwire/config"
	"github.com/gossip-lsp/lspwire/jsonrpc"
	mw "github.com/gossip-lsp/lspwire/middleware"
)

// Context wraps context.Context with accessors for the message being handled.
type Context struct {
	context.Context

	Client *ClientProxy
	server *Server
	call   *mw.Call
}

func newContext(ctx context.Context, s *Server, call *mw.Call) *Context {
	return &Context{
		Context: ctx,
		Client:  s.Client(),
		server:  s,
		call:    call,
	}
}

// Server returns the underlying Server.
func (c *Context) Server() *Server { return c.server }

// Logger returns the server's logger tagged with the current method.
func (c *Context) Logger() *slog.Logger {
	return c.server.logger.With("method", c.call.Method)
}

// Method returns the method being handled.
func (c *Context) Method() string { return c.call.Method }

// RequestID returns the request id, or the null id for a notification.
func (c *Context) RequestID() jsonrpc.ID { return c.call.ID }

// Settings returns the server's current settings.
func (c *Context) Settings() config.Settings { return c.server.Settings() }

// Stop ends Serve after the current message. Use it from an exit handler.
func (c *Context) Stop() { c.server.Stop() }
