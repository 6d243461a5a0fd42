package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"unicode/utf8"

	"golang.org/x/net/websocket"

	"github.com/gossip-lsp/lspwire/jsonrpc"
)

// ListenWebSocket serves HTTP on addr, waits for the first WebSocket upgrade,
// and returns that connection as a Packet transport. Each text message is one
// JSON-RPC document with no Content-Length header. Used by Monaco, Theia, and
// other web-based editors.
func ListenWebSocket(addr string) (Packet, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return serveWebSocket(ln)
}

func serveWebSocket(ln net.Listener) (*wsTransport, error) {
	connCh := make(chan *wsTransport, 1)
	srv := &http.Server{}

	var once sync.Once
	srv.Handler = websocket.Handler(func(ws *websocket.Conn) {
		t := &wsTransport{conn: ws, srv: srv, done: make(chan struct{})}
		accepted := false
		once.Do(func() {
			connCh <- t
			accepted = true
		})
		if !accepted {
			// One client per session.
			ws.Close()
			return
		}
		// The handler must not return while the connection is in use.
		<-t.done
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case t := <-connCh:
		return t, nil
	case err := <-errCh:
		return nil, fmt.Errorf("websocket server: %w", err)
	}
}

type wsTransport struct {
	conn *websocket.Conn
	srv  *http.Server

	closeOnce sync.Once
	done      chan struct{}
}

func (w *wsTransport) ReceivePacket() (string, error) {
	var msg string
	if err := websocket.Message.Receive(w.conn, &msg); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("receiving websocket message: %w", err)
	}
	// Binary frames arrive unchecked.
	if !utf8.ValidString(msg) {
		return "", &jsonrpc.PacketError{Reason: "Content of a websocket message is not valid UTF-8"}
	}
	return msg, nil
}

func (w *wsTransport) SendPacket(packet []byte) error {
	return websocket.Message.Send(w.conn, string(packet))
}

func (w *wsTransport) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.conn.Close()
		close(w.done)
		if w.srv != nil {
			w.srv.Close()
		}
	})
	return err
}
