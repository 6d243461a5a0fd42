// Package transport provides the byte sources and sinks an LSP endpoint can
// be served over: stdio, TCP, Unix domain sockets, named pipes, Node.js IPC,
// an in-memory pipe for tests, and WebSocket.
//
// Byte-stream transports (Stream) carry Content-Length framed packets and are
// wrapped in a jsonrpc.Codec. Message-oriented transports (Packet) deliver one
// unframed JSON document per message and are used by the endpoint directly.
package transport

import "io"

// Transport is any connection the server can be served over. It is always
// either a Stream or a Packet.
type Transport interface {
	io.Closer
}

// Stream is a bidirectional byte stream.
type Stream interface {
	Transport
	io.Reader
	io.Writer
}

// Packet is a message-oriented transport where each message is one packet.
// It satisfies jsonrpc.Transport.
type Packet interface {
	Transport
	ReceivePacket() (string, error)
	SendPacket(packet []byte) error
}

// Factory creates a Transport lazily, typically by accepting a connection.
type Factory func() (Transport, error)
