package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Settings is the lspwire settings file.
//
//	[framing]
//	max_content_length = 0
//	[session]
//	failure_replies = true
//	[log]
//	level = "info"
//	format = "text"
type Settings struct {
	Framing Framing `toml:"framing"`
	Session Session `toml:"session"`
	Log     Log     `toml:"log"`
}

// Framing bounds what the packet framer accepts.
type Framing struct {
	// MaxContentLength rejects bodies larger than this many bytes. 0 means
	// no limit.
	MaxContentLength int64 `toml:"max_content_length"`
}

// Session controls how the endpoint treats malformed messages.
type Session struct {
	FailureReplies bool `toml:"failure_replies"`
}

// Log selects the slog level and handler.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Defaults returns the settings used when no file is present.
func Defaults() Settings {
	return Settings{
		Session: Session{FailureReplies: true},
		Log:     Log{Level: "info", Format: "text"},
	}
}

// Validate implements Validatable.
func (s *Settings) Validate() error {
	if s.Framing.MaxContentLength < 0 {
		return fmt.Errorf("framing.max_content_length must not be negative, got %d", s.Framing.MaxContentLength)
	}
	if _, err := ParseLevel(s.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(s.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", s.Log.Format)
	}
	return nil
}

// SlogLevel returns the configured level, falling back to info.
func (s *Settings) SlogLevel() slog.Level {
	lvl, err := ParseLevel(s.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// JSONLogs reports whether log.format selects the JSON handler.
func (s *Settings) JSONLogs() bool {
	return strings.EqualFold(s.Log.Format, "json")
}

// OnLevelChange runs fn with the new level whenever a swap changes log.level.
func OnLevelChange(s *Store[Settings], fn func(slog.Level)) {
	OnFieldChange(s, (*Settings).SlogLevel, func(_, lvl slog.Level) { fn(lvl) })
}

// OnFailureRepliesChange runs fn when session.failure_replies flips.
func OnFailureRepliesChange(s *Store[Settings], fn func(enabled bool)) {
	OnFieldChange(s, func(c *Settings) bool { return c.Session.FailureReplies }, func(_, on bool) { fn(on) })
}

// OnMaxContentLengthChange runs fn when framing.max_content_length changes.
func OnMaxContentLengthChange(s *Store[Settings], fn func(old, new_ int64)) {
	OnFieldChange(s, func(c *Settings) int64 { return c.Framing.MaxContentLength }, fn)
}

// ParseLevel maps debug, info, warn, and error to slog levels. An empty
// string is info.
func ParseLevel(name string) (slog.Level, error) {
	if name == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", name, err)
	}
	return lvl, nil
}
