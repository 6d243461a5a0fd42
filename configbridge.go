package lspwire

import (
	"log/slog"

	"github.com/gossip-lsp/lspwire/config"
)

// settingsBridge keeps the server's settings in sync with a TOML file.
type settingsBridge struct {
	store    *config.Store[config.Settings]
	reloader *config.Reloader[config.Settings]
	watcher  *config.Watcher
}

// loadSettings reads path and starts watching it. The log level and failure
// replies follow later edits; framing limits apply from the next Serve.
func (s *Server) loadSettings(path string) (*settingsBridge, error) {
	defaults := config.Defaults()
	initial, err := config.LoadTOML(path, &defaults)
	if err != nil {
		return nil, err
	}

	b := &settingsBridge{store: config.NewStore(initial)}
	b.reloader = config.NewReloader(b.store, path, &defaults)
	s.watchSettings(b.store)

	watcher, err := config.NewWatcher(path, func() {
		if err := b.reloader.Reload(); err != nil {
			s.logger.Warn("failed to reload settings", "path", path, "error", err)
		}
	}, config.WithWatcherLogger(s.logger))
	if err != nil {
		// Watching is best-effort; the initial settings still apply.
		s.logger.Warn("failed to start settings watcher", "path", path, "error", err)
	}
	b.watcher = watcher
	return b, nil
}

// watchSettings applies reloaded settings to the running server.
func (s *Server) watchSettings(store *config.Store[config.Settings]) {
	config.OnLevelChange(store, func(lvl slog.Level) {
		s.levelVar.Set(lvl)
		s.logger.Info("log level changed", "level", lvl.String())
	})
	config.OnFailureRepliesChange(store, func(enabled bool) {
		if ep := s.Endpoint(); ep != nil {
			ep.SetFailureReplies(enabled)
		}
		s.logger.Info("failure replies changed", "enabled", enabled)
	})
	config.OnMaxContentLengthChange(store, func(old, new_ int64) {
		s.logger.Warn("framing.max_content_length changes take effect on the next session",
			"current", old,
			"configured", new_,
		)
	})
}

func (b *settingsBridge) close() {
	if b.watcher != nil {
		b.watcher.Close()
	}
}
