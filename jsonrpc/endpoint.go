// Package jsonrpc implements the server side of a JSON-RPC 2.0 connection
// over Content-Length framed streams, as specified by the LSP base protocol.
//
// The pipeline is Framer (ReadPacket / Codec) -> Parser (ParseMessage) ->
// Endpoint (ReadMessage). Framing and parsing never retry; the Endpoint
// decides which failures end the session and which only cost one packet.
package jsonrpc

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
)

// Transport moves whole packets between the Endpoint and its peer.
// ReceivePacket blocks until a packet is available. Errors that match
// ErrInvalidData cost one packet; any other error ends the stream.
type Transport interface {
	ReceivePacket() (string, error)
	SendPacket(packet []byte) error
}

// EndpointOption configures an Endpoint.
type EndpointOption func(*Endpoint)

// WithEndpointLogger sets the logger used to report discarded packets.
func WithEndpointLogger(l *slog.Logger) EndpointOption {
	return func(e *Endpoint) { e.logger = l }
}

// WithFailureReplies controls whether a malformed message with a recoverable
// id is answered with a JSON-RPC error. Enabled by default.
func WithFailureReplies(enabled bool) EndpointOption {
	return func(e *Endpoint) { e.failureReplies.Store(enabled) }
}

// WithFailureHook registers fn to be called with every discarded packet's error.
func WithFailureHook(fn func(err error)) EndpointOption {
	return func(e *Endpoint) { e.onFailure = fn }
}

// Endpoint reads messages from a Transport it exclusively owns. It is not
// safe for concurrent ReadMessage calls.
type Endpoint struct {
	transport Transport
	logger    *slog.Logger
	session   string
	onFailure func(error)

	failureReplies atomic.Bool
}

// NewEndpoint creates an Endpoint over t.
func NewEndpoint(t Transport, opts ...EndpointOption) *Endpoint {
	e := &Endpoint{
		transport: t,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		session:   uuid.NewString(),
	}
	e.failureReplies.Store(true)
	for _, o := range opts {
		o(e)
	}
	e.logger = e.logger.With("session", e.session)
	return e
}

// SessionID returns the random id attached to this endpoint's log records.
func (e *Endpoint) SessionID() string { return e.session }

// SetFailureReplies changes WithFailureReplies at runtime.
func (e *Endpoint) SetFailureReplies(enabled bool) { e.failureReplies.Store(enabled) }

type stepOutcome int

const (
	stepEmit stepOutcome = iota
	stepDiscard
)

// ReadMessage returns the next well-formed message. Malformed packets are
// reported and skipped. A returned error is stream-fatal: the caller must not
// call ReadMessage again.
//
// Every *Request returned carries a live Response handle, and the caller is
// expected to reply before reading the next message.
func (e *Endpoint) ReadMessage() (Message, error) {
	for {
		outcome, msg, err := e.step()
		if err != nil {
			return nil, err
		}
		switch outcome {
		case stepEmit:
			return msg, nil
		case stepDiscard:
			continue
		}
	}
}

// step performs one read: it either yields a message or discards a packet.
func (e *Endpoint) step() (stepOutcome, Message, error) {
	packet, err := e.transport.ReceivePacket()
	if err != nil {
		if IsPacketError(err) {
			e.reportFailure(err)
			return stepDiscard, nil, nil
		}
		return stepDiscard, nil, err
	}

	msg, err := ParseMessage(packet)
	if err != nil {
		e.reportFailure(err)
		if f, ok := err.(*ParseFailure); ok {
			if err := e.replyFailure(f); err != nil {
				return stepDiscard, nil, err
			}
		}
		return stepDiscard, nil, nil
	}

	switch m := msg.(type) {
	case *Request:
		m.Response = newResponseHandle(m.ID, e.transport)
		return stepEmit, m, nil
	case *Notification:
		return stepEmit, m, nil
	default:
		return stepDiscard, nil, fmt.Errorf("jsonrpc: unexpected message type %T", msg)
	}
}

func (e *Endpoint) reportFailure(err error) {
	e.logger.Warn("discarding malformed packet", "error", err)
	if e.onFailure != nil {
		e.onFailure(err)
	}
}

func (e *Endpoint) replyFailure(f *ParseFailure) error {
	if !f.ID.IsValid() || !e.failureReplies.Load() {
		return nil
	}
	return newResponseHandle(f.ID, e.transport).Failure(f.RPCError())
}

// Notify sends a server-initiated notification to the peer.
func (e *Endpoint) Notify(method string, params interface{}) error {
	n := outboundNotification{JSONRPC: Version, Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshaling params for %s: %w", method, err)
		}
		n.Params = raw
	}
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return e.transport.SendPacket(data)
}
