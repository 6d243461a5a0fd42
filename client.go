package lspwire

import "github.com/gossip-lsp/lspwire/jsonrpc"

// MessageType is the severity of a window/logMessage notification.
type MessageType int

const (
	Error   MessageType = 1
	Warning MessageType = 2
	Info    MessageType = 3
	Log     MessageType = 4
)

// MethodLogMessage is the LSP method for server log lines shown by the client.
const MethodLogMessage = "window/logMessage"

// LogMessageParams are the params of window/logMessage.
type LogMessageParams struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// ClientProxy sends notifications from server to client.
type ClientProxy struct {
	endpoint *jsonrpc.Endpoint
}

func newClientProxy(ep *jsonrpc.Endpoint) *ClientProxy {
	return &ClientProxy{endpoint: ep}
}

// Notify sends a notification to the client.
func (c *ClientProxy) Notify(method string, params interface{}) error {
	return c.endpoint.Notify(method, params)
}

// LogMessage sends a log message to the client.
func (c *ClientProxy) LogMessage(typ MessageType, message string) error {
	return c.Notify(MethodLogMessage, &LogMessageParams{Type: typ, Message: message})
}
