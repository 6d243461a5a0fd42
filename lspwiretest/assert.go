package lspwiretest

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gossip-lsp/lspwire/jsonrpc"
)

// AssertErrorCode asserts that resp is an error reply with code.
func AssertErrorCode(t testing.TB, resp *jsonrpc.Response, code int) {
	t.Helper()
	if resp == nil {
		t.Fatal("response is nil")
	}
	if resp.Error == nil {
		t.Fatalf("expected error code %d, got result %s", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Errorf("error code = %d (%s), want %d", resp.Error.Code, resp.Error.Message, code)
	}
}

// AssertResultJSON asserts that resp is a success reply whose result is
// structurally equal to want.
func AssertResultJSON(t testing.TB, resp *jsonrpc.Response, want string) {
	t.Helper()
	if resp == nil {
		t.Fatal("response is nil")
	}
	if resp.Error != nil {
		t.Fatalf("expected result, got error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	raw := resp.Result
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	var got, exp interface{}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decoding result %s: %v", resp.Result, err)
	}
	if err := json.Unmarshal([]byte(want), &exp); err != nil {
		t.Fatalf("decoding expectation %s: %v", want, err)
	}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}
