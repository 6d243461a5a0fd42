package jsonrpc

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// ResponseHandle sends the single reply owed to one Request. It is bound to
// the request's id and to the transport the request arrived on. After the
// first Success or Failure the handle is spent and writes nothing further.
type ResponseHandle struct {
	id        ID
	transport Transport
	sent      atomic.Bool
}

func newResponseHandle(id ID, t Transport) *ResponseHandle {
	return &ResponseHandle{id: id, transport: t}
}

// ID returns the id the reply will carry.
func (h *ResponseHandle) ID() ID { return h.id }

// Responded reports whether the reply has already been sent.
func (h *ResponseHandle) Responded() bool { return h != nil && h.sent.Load() }

// Success sends {"jsonrpc":"2.0","id":<id>,"result":<result>}. A nil result
// is sent as JSON null. If result cannot be marshaled, an internal error reply
// is sent in its place and the marshal error is returned.
func (h *ResponseHandle) Success(result interface{}) error {
	if err := h.claim(); err != nil {
		return err
	}

	data := RawMessage("null")
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			if serr := h.send(&Response{JSONRPC: Version, ID: h.id, Error: &Error{Code: CodeInternalError, Message: err.Error()}}); serr != nil {
				return serr
			}
			return fmt.Errorf("%w: %w", ErrInvalidResult, err)
		}
		data = raw
	}
	return h.send(&Response{JSONRPC: Version, ID: h.id, Result: data})
}

// Failure sends {"jsonrpc":"2.0","id":<id>,"error":<rpcErr>}. If rpcErr.Data
// cannot be marshaled, the error is sent as InternalError without data and
// the marshal error is returned.
func (h *ResponseHandle) Failure(rpcErr *Error) error {
	if err := h.claim(); err != nil {
		return err
	}
	if rpcErr == nil {
		rpcErr = &Error{Code: CodeInternalError, Message: "unknown error"}
	}
	data, err := json.Marshal(&Response{JSONRPC: Version, ID: h.id, Error: rpcErr})
	if err != nil {
		if serr := h.send(&Response{JSONRPC: Version, ID: h.id, Error: &Error{Code: CodeInternalError, Message: rpcErr.Message}}); serr != nil {
			return serr
		}
		return fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}
	return h.write(data)
}

func (h *ResponseHandle) claim() error {
	if h == nil || h.transport == nil {
		return ErrNoResponseHandle
	}
	if !h.sent.CompareAndSwap(false, true) {
		return ErrAlreadyResponded
	}
	return nil
}

func (h *ResponseHandle) send(resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshaling response: %w", err)
	}
	return h.write(data)
}

func (h *ResponseHandle) write(data []byte) error {
	if err := h.transport.SendPacket(data); err != nil {
		return fmt.Errorf("sending response %s: %w", h.id, err)
	}
	return nil
}
