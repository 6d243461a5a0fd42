package jsonrpc

import "encoding/json"

// Method describes a request or notification with typed params P and, for
// requests, typed result R.
type Method[P, R any] struct {
	Name string
}

// NewMethod returns a Method descriptor for name.
func NewMethod[P, R any](name string) Method[P, R] {
	return Method[P, R]{Name: name}
}

// DecodeParams unmarshals raw into P. Absent params decode to the zero value.
func (m Method[P, R]) DecodeParams(raw RawMessage) (P, error) {
	var p P
	if len(raw) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, &Error{Code: CodeInvalidParams, Message: "invalid params for " + m.Name + ": " + err.Error()}
	}
	return p, nil
}

// Reply sends result through h.
func (m Method[P, R]) Reply(h *ResponseHandle, result R) error {
	return h.Success(result)
}
