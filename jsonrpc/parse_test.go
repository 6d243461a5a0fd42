package jsonrpc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func decodeJSON(t *testing.T, raw []byte) interface{} {
	t.Helper()
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decoding %s: %v", raw, err)
	}
	return v
}

func TestParseNotification(t *testing.T) {
	msg, err := ParseMessage(`{"method":"hover","params":{"key":"value"}}`)
	if err != nil {
		t.Fatal(err)
	}
	n, ok := msg.(*Notification)
	if !ok {
		t.Fatalf("got %T, want *Notification", msg)
	}
	if n.Method != "hover" {
		t.Errorf("method = %q, want hover", n.Method)
	}
	if diff := cmp.Diff(map[string]interface{}{"key": "value"}, decodeJSON(t, n.Params)); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRequest(t *testing.T) {
	msg, err := ParseMessage(`{"jsonrpc":"2.0","id":123,"method":"hover","params":{"key":"value"}}`)
	if err != nil {
		t.Fatal(err)
	}
	r, ok := msg.(*Request)
	if !ok {
		t.Fatalf("got %T, want *Request", msg)
	}
	if r.Method != "hover" {
		t.Errorf("method = %q", r.Method)
	}
	if r.ID != IntID(123) {
		t.Errorf("id = %v, want 123", r.ID)
	}
	if r.Response != nil {
		t.Error("parser must not bind a response handle")
	}
	if diff := cmp.Diff(map[string]interface{}{"key": "value"}, decodeJSON(t, r.Params)); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDuplicateKeysLastWins(t *testing.T) {
	msg, err := ParseMessage(`{"id":1,"method":"a","id":null}`)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := msg.(*Notification); !ok {
		t.Fatalf("got %T, want *Notification", msg)
	}

	msg, err = ParseMessage(`{"id":null,"method":"a","params":[1],"method":"b","id":"x","params":{"k":2}}`)
	if err != nil {
		t.Fatal(err)
	}
	r, ok := msg.(*Request)
	if !ok {
		t.Fatalf("got %T, want *Request", msg)
	}
	if r.Method != "b" || r.ID != StringID("x") {
		t.Errorf("got method %q id %v, want b and \"x\"", r.Method, r.ID)
	}
	if diff := cmp.Diff(map[string]interface{}{"k": float64(2)}, decodeJSON(t, r.Params)); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIDs(t *testing.T) {
	tests := []struct {
		packet string
		want   ID
		notif  bool
	}{
		{`{"id":"abc","method":"m"}`, StringID("abc"), false},
		{`{"id":-7,"method":"m"}`, IntID(-7), false},
		{`{"id":0,"method":"m"}`, IntID(0), false},
		{`{"id":null,"method":"m"}`, ID{}, true},
		{`{"method":"m"}`, ID{}, true},
	}
	for _, tt := range tests {
		msg, err := ParseMessage(tt.packet)
		if err != nil {
			t.Errorf("%s: %v", tt.packet, err)
			continue
		}
		switch m := msg.(type) {
		case *Notification:
			if !tt.notif {
				t.Errorf("%s: got notification, want request", tt.packet)
			}
		case *Request:
			if tt.notif {
				t.Errorf("%s: got request, want notification", tt.packet)
			} else if m.ID != tt.want {
				t.Errorf("%s: id = %v, want %v", tt.packet, m.ID, tt.want)
			}
		}
	}
}

func TestParseParamsNormalization(t *testing.T) {
	omitted, err := ParseMessage(`{"id":1,"method":"m"}`)
	if err != nil {
		t.Fatal(err)
	}
	explicitNull, err := ParseMessage(`{"id":1,"method":"m","params":null}`)
	if err != nil {
		t.Fatal(err)
	}
	a, b := omitted.(*Request).Params, explicitNull.(*Request).Params
	if a != nil || b != nil {
		t.Errorf("params = %q / %q, want both absent", a, b)
	}

	empty, err := ParseMessage(`{"id":1,"method":"m","params":{}}`)
	if err != nil {
		t.Fatal(err)
	}
	if p := empty.(*Request).Params; string(p) != "{}" {
		t.Errorf("empty object params = %q, want {}", p)
	}

	arr, err := ParseMessage(`{"method":"m","params":[1,"two"]}`)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]interface{}{float64(1), "two"}, decodeJSON(t, arr.(*Notification).Params)); diff != "" {
		t.Errorf("array params mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name   string
		packet string
		kind   FailureKind
		id     ID
	}{
		{"invalid json", `{"id":1,"method":`, KindParseError, ID{}},
		{"empty body", ``, KindParseError, ID{}},
		{"invalid utf8", "{\"method\":\"\xff\"}", KindParseError, ID{}},
		{"missing method", `{"id":5,"params":{}}`, KindInvalidRequest, IntID(5)},
		{"numeric method", `{"id":"x","method":42}`, KindInvalidRequest, StringID("x")},
		{"empty method", `{"id":2,"method":""}`, KindInvalidRequest, IntID(2)},
		{"scalar params", `{"id":3,"method":"m","params":7}`, KindInvalidRequest, IntID(3)},
		{"string params", `{"method":"m","params":"p"}`, KindInvalidRequest, ID{}},
		{"fractional id", `{"id":1.5,"method":"m"}`, KindInvalidRequest, ID{}},
		{"object id", `{"id":{},"method":"m"}`, KindInvalidRequest, ID{}},
		{"batch", `[{"id":1,"method":"m"}]`, KindInvalidRequest, ID{}},
		{"scalar document", `42`, KindInvalidRequest, ID{}},
	}
	for _, tt := range tests {
		msg, err := ParseMessage(tt.packet)
		if err == nil {
			t.Errorf("%s: expected failure, got %T", tt.name, msg)
			continue
		}
		var f *ParseFailure
		if !errors.As(err, &f) {
			t.Errorf("%s: error %T is not a *ParseFailure", tt.name, err)
			continue
		}
		if f.Kind != tt.kind {
			t.Errorf("%s: kind = %v, want %v", tt.name, f.Kind, tt.kind)
		}
		if f.ID != tt.id {
			t.Errorf("%s: id = %v, want %v", tt.name, f.ID, tt.id)
		}
		if !IsPacketError(err) {
			t.Errorf("%s: parse failure should be packet-scoped", tt.name)
		}
	}
}

func TestParseFailureRPCError(t *testing.T) {
	_, err := ParseMessage(`{"id":9}`)
	f := err.(*ParseFailure)
	rpcErr := f.RPCError()
	if rpcErr.Code != CodeInvalidRequest {
		t.Errorf("code = %d, want %d", rpcErr.Code, CodeInvalidRequest)
	}

	_, err = ParseMessage("{\n\"id\": 1,\n\"method\": ]\n}")
	f = err.(*ParseFailure)
	if f.RPCError().Code != CodeParseError {
		t.Errorf("code = %d, want %d", f.RPCError().Code, CodeParseError)
	}
	if f.Position == nil {
		t.Fatal("expected the syntax error to be located")
	}
	if f.Position.Line < 1 || f.Position.Line > 4 {
		t.Errorf("line = %d, want within the document", f.Position.Line)
	}
}
