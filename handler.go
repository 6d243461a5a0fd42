package lspwire

import (
	"encoding/json"

	"github.com/gossip-lsp/lspwire/jsonrpc"
)

// RawHandler processes a request with raw params. Returning a *jsonrpc.Error
// sends that error; any other error is sent as InternalError.
type RawHandler func(ctx *Context, params json.RawMessage) (interface{}, error)

// RawNotificationHandler processes a notification with raw params. A
// returned error is logged; notifications are never answered.
type RawNotificationHandler func(ctx *Context, params json.RawMessage) error

// Handle registers a typed request handler for m. Params that do not decode
// into P are answered with InvalidParams without calling h.
func Handle[P, R any](s *Server, m jsonrpc.Method[P, R], h func(ctx *Context, params P) (R, error)) {
	s.HandleRequest(m.Name, func(ctx *Context, raw json.RawMessage) (interface{}, error) {
		p, err := m.DecodeParams(raw)
		if err != nil {
			return nil, err
		}
		return h(ctx, p)
	})
}

// HandleNotify registers a typed notification handler for method.
func HandleNotify[P any](s *Server, method string, h func(ctx *Context, params P) error) {
	m := jsonrpc.NewMethod[P, struct{}](method)
	s.HandleNotification(method, func(ctx *Context, raw json.RawMessage) error {
		p, err := m.DecodeParams(raw)
		if err != nil {
			return err
		}
		return h(ctx, p)
	})
}
