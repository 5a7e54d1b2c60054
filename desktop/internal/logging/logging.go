// Package logging builds the process-wide slog logger from config.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/slovo/slovo/desktop/internal/config"
)

// New returns a logger writing to w in the configured format, together with
// the LevelVar that controls it so the level can change at runtime.
func New(cfg config.LogConfig, w io.Writer) (*slog.Logger, *slog.LevelVar, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(lvl)

	opts := &slog.HandlerOptions{Level: levelVar}
	var h slog.Handler
	switch cfg.Format {
	case "text":
		h = slog.NewTextHandler(w, opts)
	case "json", "":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}
	return slog.New(h), levelVar, nil
}

// ParseLevel maps a config level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
	}
}

// Apply updates levelVar from a reloaded config. Unknown levels are ignored.
func Apply(levelVar *slog.LevelVar, cfg config.LogConfig) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		slog.Warn("logging: ignoring level from reloaded config", "level", cfg.Level)
		return
	}
	if levelVar.Level() != lvl {
		levelVar.Set(lvl)
		slog.Info("logging: level changed", "level", lvl.String())
	}
}
