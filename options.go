package lspwire

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gossip-lsp/lspwire/middleware"
	"github.com/gossip-lsp/lspwire/transport"
)

// Option configures a Server during construction.
type Option func(*Server)

// ServeOption configures how the server is served.
type ServeOption func(*serveConfig)

type serveConfig struct {
	transport        transport.Transport
	transportFactory transport.Factory
	settingsPath     string
	err              error
}

// WithLogger sets a custom slog logger on the server. Settings reloads do
// not change the level of a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
		s.customLogger = true
	}
}

// WithMiddleware adds middleware to the server's dispatch chain.
// Middleware is applied in order: the first middleware is outermost.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(s *Server) {
		s.middlewares = append(s.middlewares, mws...)
	}
}

// WithStdio configures the server to communicate over stdin/stdout.
func WithStdio() ServeOption {
	return func(cfg *serveConfig) {
		cfg.transport = transport.Stdio()
	}
}

// WithTransport configures the server to use a specific transport.
func WithTransport(t transport.Transport) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transport = t
	}
}

// WithTCP configures the server to listen on a TCP address (e.g., ":9257").
func WithTCP(addr string) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transportFactory = func() (transport.Transport, error) {
			return transport.ListenTCP(addr)
		}
	}
}

// WithSocket configures the server to listen on a Unix domain socket.
func WithSocket(path string) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transportFactory = func() (transport.Transport, error) {
			return transport.ListenSocket(path)
		}
	}
}

// WithPipe configures the server to listen on a named pipe (or Unix socket on non-Windows).
func WithPipe(name string) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transportFactory = func() (transport.Transport, error) {
			return transport.ListenPipe(name)
		}
	}
}

// WithWebSocket configures the server to accept one WebSocket client.
func WithWebSocket(addr string) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transportFactory = func() (transport.Transport, error) {
			return transport.ListenWebSocket(addr)
		}
	}
}

// WithNodeIPC configures the server for Node.js IPC (VS Code extension host).
func WithNodeIPC() ServeOption {
	return func(cfg *serveConfig) {
		cfg.transport = transport.NodeIPC()
	}
}

// WithSettingsFile loads settings from a TOML file and reloads them when the
// file changes. A missing file means defaults.
func WithSettingsFile(path string) ServeOption {
	return func(cfg *serveConfig) {
		cfg.settingsPath = path
	}
}

// FromArgs parses os.Args to determine the transport and settings file.
// Supported flags:
//
//	--stdio               (default)
//	--tcp :PORT
//	--socket PATH
//	--pipe NAME
//	--ws :PORT
//	--node-ipc
//	--config PATH
func FromArgs() ServeOption {
	return func(cfg *serveConfig) {
		cfg.err = parseArgs(os.Args[1:], cfg)
	}
}

func parseArgs(args []string, cfg *serveConfig) error {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		flag, value, hasValue := strings.Cut(arg, "=")
		needValue := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
				i++
				return args[i], nil
			}
			return "", fmt.Errorf("%s requires a value", flag)
		}

		switch flag {
		case "--stdio":
			cfg.transport, cfg.transportFactory = transport.Stdio(), nil
		case "--node-ipc":
			cfg.transport, cfg.transportFactory = transport.NodeIPC(), nil
		case "--tcp", "--socket", "--pipe", "--ws":
			v, err := needValue()
			if err != nil {
				return err
			}
			cfg.transport = nil
			cfg.transportFactory = listenerFor(flag, v)
		case "--config":
			v, err := needValue()
			if err != nil {
				return err
			}
			cfg.settingsPath = v
		}
	}
	return nil
}

func listenerFor(flag, v string) transport.Factory {
	switch flag {
	case "--tcp":
		return func() (transport.Transport, error) { return transport.ListenTCP(v) }
	case "--socket":
		return func() (transport.Transport, error) { return transport.ListenSocket(v) }
	case "--pipe":
		return func() (transport.Transport, error) { return transport.ListenPipe(v) }
	default:
		return func() (transport.Transport, error) { return transport.ListenWebSocket(v) }
	}
}
