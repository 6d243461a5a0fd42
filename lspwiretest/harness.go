// Package lspwiretest provides testing utilities for lspwire servers.
// It includes an in-memory client that talks to a server over
// transport.MemoryPipe, plus assertion helpers for replies.
package lspwiretest

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/gossip-lsp/lspwire"
	"github.com/gossip-lsp/lspwire/jsonrpc"
	"github.com/gossip-lsp/lspwire/transport"
)

// Timeout bounds every wait performed by the Client.
var Timeout = 5 * time.Second

// Notification is a server-to-client notification seen by the Client.
type Notification struct {
	Method string
	Params json.RawMessage
}

// Client is a test LSP client connected to a server over an in-memory
// transport. The server runs in a background goroutine and is torn down
// when the test completes.
type Client struct {
	t     testing.TB
	conn  transport.Stream
	codec *jsonrpc.Codec

	nextID atomic.Int64

	mu            sync.Mutex
	replies       map[string]chan *jsonrpc.Response
	notifications []Notification

	served chan error
	closed chan struct{}
}

// NewClient creates a test client connected to s. Extra ServeOptions are
// passed to lspwire.Serve after the in-memory transport.
func NewClient(t testing.TB, s *lspwire.Server, opts ...lspwire.ServeOption) *Client {
	clientSide, serverSide := transport.MemoryPipe()

	c := &Client{
		t:       t,
		conn:    clientSide,
		codec:   jsonrpc.NewCodec(clientSide, clientSide),
		replies: make(map[string]chan *jsonrpc.Response),
		served:  make(chan error, 1),
		closed:  make(chan struct{}),
	}

	serveOpts := append([]lspwire.ServeOption{lspwire.WithTransport(serverSide)}, opts...)
	go func() {
		c.served <- lspwire.Serve(s, serveOpts...)
	}()
	go c.readLoop()

	t.Cleanup(func() {
		clientSide.Close()
		select {
		case <-c.served:
		case <-time.After(Timeout):
			t.Logf("server did not stop within %v", Timeout)
		}
	})
	return c
}

func (c *Client) readLoop() {
	defer close(c.closed)
	for {
		packet, err := c.codec.ReceivePacket()
		if err != nil {
			if jsonrpc.IsStreamFatal(err) {
				return
			}
			continue
		}
		if m := gjson.Get(packet, "method"); m.Exists() {
			c.mu.Lock()
			c.notifications = append(c.notifications, Notification{
				Method: m.String(),
				Params: json.RawMessage(gjson.Get(packet, "params").Raw),
			})
			c.mu.Unlock()
			continue
		}
		var resp jsonrpc.Response
		if err := json.Unmarshal([]byte(packet), &resp); err != nil {
			continue
		}
		select {
		case c.slot(resp.ID) <- &resp:
		default:
		}
	}
}

func (c *Client) slot(id jsonrpc.ID) chan *jsonrpc.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := id.String()
	ch, ok := c.replies[key]
	if !ok {
		ch = make(chan *jsonrpc.Response, 1)
		c.replies[key] = ch
	}
	return ch
}

// Call sends a request and decodes its result into result (which may be
// nil). A JSON-RPC error reply is returned as *jsonrpc.Error.
func (c *Client) Call(method string, params, result interface{}) error {
	c.t.Helper()
	id := jsonrpc.IntID(c.nextID.Add(1))
	req := map[string]interface{}{"jsonrpc": jsonrpc.Version, "id": id, "method": method}
	if params != nil {
		req["params"] = params
	}
	resp := c.roundTrip(id, c.marshal(req))
	if resp.Error != nil {
		return resp.Error
	}
	if result != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("unmarshalling result: %w", err)
		}
	}
	return nil
}

// Notify sends a notification.
func (c *Client) Notify(method string, params interface{}) {
	c.t.Helper()
	n := map[string]interface{}{"jsonrpc": jsonrpc.Version, "method": method}
	if params != nil {
		n["params"] = params
	}
	c.SendPacket(c.marshal(n))
}

// SendPacket frames body and writes it.
func (c *Client) SendPacket(body string) {
	c.t.Helper()
	if err := c.codec.SendPacket([]byte(body)); err != nil {
		c.t.Fatalf("sending packet: %v", err)
	}
}

// SendWire writes raw bytes with no framing added.
func (c *Client) SendWire(raw string) {
	c.t.Helper()
	if _, err := c.conn.Write([]byte(raw)); err != nil {
		c.t.Fatalf("writing wire bytes: %v", err)
	}
}

// Response waits for the reply carrying id.
func (c *Client) Response(id jsonrpc.ID) *jsonrpc.Response {
	c.t.Helper()
	select {
	case resp := <-c.slot(id):
		return resp
	case <-c.closed:
		select {
		case resp := <-c.slot(id):
			return resp
		default:
		}
		c.t.Fatalf("connection closed before reply %s", id)
	case <-time.After(Timeout):
		c.t.Fatalf("timed out waiting for reply %s", id)
	}
	return nil
}

// TryResponse returns the reply carrying id if it has already arrived.
func (c *Client) TryResponse(id jsonrpc.ID) (*jsonrpc.Response, bool) {
	select {
	case resp := <-c.slot(id):
		return resp, true
	default:
		return nil, false
	}
}

// Notifications returns every notification received so far.
func (c *Client) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

// WaitForNotification polls until a notification with method has arrived
// and returns the first one.
func (c *Client) WaitForNotification(method string) Notification {
	c.t.Helper()
	deadline := time.Now().Add(Timeout)
	for time.Now().Before(deadline) {
		for _, n := range c.Notifications() {
			if n.Method == method {
				return n
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	c.t.Fatalf("timed out waiting for %s", method)
	return Notification{}
}

// Wait blocks until Serve returns and reports its error.
func (c *Client) Wait() error {
	c.t.Helper()
	select {
	case err := <-c.served:
		c.served <- err
		return err
	case <-time.After(Timeout):
		c.t.Fatal("timed out waiting for the server to stop")
		return nil
	}
}

func (c *Client) roundTrip(id jsonrpc.ID, body string) *jsonrpc.Response {
	c.t.Helper()
	c.SendPacket(body)
	return c.Response(id)
}

func (c *Client) marshal(v interface{}) string {
	c.t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		c.t.Fatalf("marshalling message: %v", err)
	}
	return string(data)
}
