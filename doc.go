// Package lspwire hosts a JSON-RPC endpoint speaking the Language Server
// Protocol base protocol. It wires a transport to a jsonrpc.Endpoint,
// dispatches each message to a registered handler through a middleware
// chain, and replies before reading the next message.
//
// A minimal server needs only a few lines:
//
//	s := lspwire.NewServer("my-lang", "0.1.0")
//	lspwire.Handle(s, hoverMethod, myHoverHandler)
//	lspwire.Serve(s, lspwire.WithStdio())
//
// See the examples/ directory for runnable servers.
package lspwire
