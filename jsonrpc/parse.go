package jsonrpc

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/gossip-lsp/lspwire/internal/jsonsyntax"
)

// FailureKind classifies a packet that is not a usable JSON-RPC message.
type FailureKind int

const (
	// KindInvalidRequest means the body is valid JSON but not a valid envelope.
	KindInvalidRequest FailureKind = iota + 1
	// KindParseError means the body is not valid JSON.
	KindParseError
)

func (k FailureKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid request"
	case KindParseError:
		return "parse error"
	default:
		return "unknown"
	}
}

// ParseFailure describes why a packet could not become a Message. ID is
// recovered when possible and is null otherwise.
type ParseFailure struct {
	ID     ID
	Kind   FailureKind
	Reason string
	// Position points at the first syntax error for KindParseError, when it
	// could be located.
	Position *jsonsyntax.Position
}

func (f *ParseFailure) Error() string {
	msg := f.Kind.String() + ": " + f.Reason
	if f.Position != nil {
		msg += fmt.Sprintf(" (line %d, column %d)", f.Position.Line, f.Position.Column)
	}
	return msg
}

// RPCError converts the failure to the error object sent back to the peer.
func (f *ParseFailure) RPCError() *Error {
	if f.Kind == KindParseError {
		return &Error{Code: CodeParseError, Message: "Parse error", Data: f.Reason}
	}
	return &Error{Code: CodeInvalidRequest, Message: "Invalid request", Data: f.Reason}
}

// ParseMessage validates one packet body as a JSON-RPC 2.0 request or
// notification. On failure the returned error is a *ParseFailure.
//
// The returned *Request has no Response handle; the Endpoint binds one.
func ParseMessage(packet string) (Message, error) {
	if !utf8.ValidString(packet) {
		return nil, &ParseFailure{Kind: KindParseError, Reason: "body is not valid UTF-8"}
	}
	if !gjson.Valid(packet) {
		f := &ParseFailure{Kind: KindParseError, Reason: "body is not valid JSON"}
		if pos, ok := jsonsyntax.Locate([]byte(packet)); ok {
			f.Position = &pos
		}
		return nil, f
	}

	doc := gjson.Parse(packet)
	if !doc.IsObject() {
		return nil, &ParseFailure{Kind: KindInvalidRequest, Reason: "message must be a JSON object"}
	}

	fields := envelopeFields(doc)

	id, err := parseID(fields["id"])
	if err != nil {
		return nil, &ParseFailure{Kind: KindInvalidRequest, Reason: err.Error()}
	}

	method := fields["method"]
	switch {
	case !method.Exists():
		return nil, &ParseFailure{ID: id, Kind: KindInvalidRequest, Reason: "method is missing"}
	case method.Type != gjson.String:
		return nil, &ParseFailure{ID: id, Kind: KindInvalidRequest, Reason: "method must be a string"}
	case method.Str == "":
		return nil, &ParseFailure{ID: id, Kind: KindInvalidRequest, Reason: "method must not be empty"}
	}

	var params RawMessage
	switch p := fields["params"]; {
	case !p.Exists(), p.Type == gjson.Null:
		// null is not allowed by JSON-RPC 2.0 but is accepted as "no params".
	case p.IsObject(), p.IsArray():
		params = RawMessage(p.Raw)
	default:
		return nil, &ParseFailure{ID: id, Kind: KindInvalidRequest, Reason: "params must be an object or an array"}
	}

	if !id.IsValid() {
		return &Notification{Method: method.Str, Params: params}, nil
	}
	return &Request{ID: id, Method: method.Str, Params: params}, nil
}

// envelopeFields collects the id, method and params members of doc. A repeated
// key resolves to its last occurrence, as encoding/json does.
func envelopeFields(doc gjson.Result) map[string]gjson.Result {
	fields := make(map[string]gjson.Result, 3)
	doc.ForEach(func(key, value gjson.Result) bool {
		switch key.Str {
		case "id", "method", "params":
			fields[key.Str] = value
		}
		return true
	})
	return fields
}

func parseID(r gjson.Result) (ID, error) {
	switch r.Type {
	case gjson.Null:
		// Also covers a missing id.
		return ID{}, nil
	case gjson.String:
		return StringID(r.Str), nil
	case gjson.Number:
		n, err := strconv.ParseInt(r.Raw, 10, 64)
		if err != nil {
			return ID{}, fmt.Errorf("id must be an integer, got %s", r.Raw)
		}
		return IntID(n), nil
	default:
		return ID{}, fmt.Errorf("id must be an integer, string, or null, got %s", r.Raw)
	}
}
