package transport

import (
	"errors"
	"io/fs"
	"net"
	"os"
)

// ListenSocket listens on a Unix domain socket at path and returns the first
// accepted connection. A stale socket file at path is removed first. Used by
// Neovim's vim.lsp.rpc.connect() and other editors supporting local IPC.
func ListenSocket(path string) (Stream, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	defer ln.Close()
	conn, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	return &socketTransport{conn: conn, path: path}, nil
}

type socketTransport struct {
	conn net.Conn
	// path is removed on Close when this side created the socket.
	path string
}

func (s *socketTransport) Read(p []byte) (int, error)  { return s.conn.Read(p) }
func (s *socketTransport) Write(p []byte) (int, error) { return s.conn.Write(p) }
func (s *socketTransport) Close() error {
	err := s.conn.Close()
	if s.path != "" {
		os.Remove(s.path)
	}
	return err
}
