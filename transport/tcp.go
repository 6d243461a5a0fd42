package transport

import (
	"fmt"
	"net"
)

type tcpTransport struct {
	conn net.Conn
}

// TCP wraps an established TCP connection.
func TCP(conn net.Conn) Stream {
	return &tcpTransport{conn: conn}
}

func (t *tcpTransport) Read(p []byte) (int, error)  { return t.conn.Read(p) }
func (t *tcpTransport) Write(p []byte) (int, error) { return t.conn.Write(p) }
func (t *tcpTransport) Close() error                { return t.conn.Close() }

// ListenTCP listens on addr and returns the first accepted connection. An LSP
// server serves exactly one client per session.
func ListenTCP(addr string) (Stream, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	defer ln.Close()
	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("accepting on %s: %w", addr, err)
	}
	return TCP(conn), nil
}

// DialTCP connects to a server listening on addr.
func DialTCP(addr string) (Stream, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return TCP(conn), nil
}
