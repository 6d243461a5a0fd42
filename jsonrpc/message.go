package jsonrpc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const Version = "2.0"

// RawMessage is a raw JSON value that delays unmarshaling.
type RawMessage = json.RawMessage

// Message is an incoming JSON-RPC 2.0 message: either *Request or
// *Notification. The set is closed; consumers switch on the concrete type.
type Message interface {
	isMessage()
}

// Request is a call that obligates exactly one reply, sent through Response.
type Request struct {
	ID     ID
	Method string
	// Params is nil when the sender omitted params or sent null.
	Params RawMessage
	// Response is bound by the Endpoint that read this request.
	Response *ResponseHandle
}

func (*Request) isMessage() {}

// Notification is a call without an id. No reply is ever produced for it.
type Notification struct {
	Method string
	Params RawMessage
}

func (*Notification) isMessage() {}

// Response is the outbound reply envelope.
type Response struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      ID         `json:"id"`
	Result  RawMessage `json:"result,omitempty"`
	Error   *Error     `json:"error,omitempty"`
}

// outboundNotification is the envelope used by Endpoint.Notify.
type outboundNotification struct {
	JSONRPC string     `json:"jsonrpc"`
	Method  string     `json:"method"`
	Params  RawMessage `json:"params,omitempty"`
}

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// NewError returns an error object with the given code and message.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// LSP-specific error codes.
const (
	CodeServerNotInitialized = -32002
	CodeRequestCancelled     = -32800
	CodeContentModified      = -32801
)

// ID is a JSON-RPC request id: null, an integer, or a string. The zero value
// is null, which is what every notification carries.
type ID struct {
	value interface{}
}

// IntID creates an integer-valued JSON-RPC request ID.
func IntID(v int64) ID { return ID{value: v} }

// StringID creates a string-valued JSON-RPC request ID.
func StringID(v string) ID { return ID{value: v} }

// IsValid reports whether the id is non-null.
func (id ID) IsValid() bool { return id.value != nil }

// Value returns nil, an int64, or a string.
func (id ID) Value() interface{} { return id.value }

func (id ID) String() string {
	switch v := id.value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return strconv.Quote(v)
	default:
		return "null"
	}
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		id.value = nil
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		id.value = n
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		id.value = s
		return nil
	}
	return &Error{Code: CodeInvalidRequest, Message: fmt.Sprintf("id must be an integer, string, or null, got %s", data)}
}
