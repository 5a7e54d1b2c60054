// Package tray maps the assistant's activity mode to the tray icon and
// tooltip. The mode itself is tracked by the UI.
package tray

import (
	"fmt"
	"strings"
)

// Mode is the assistant activity shown in the tray.
type Mode string

const (
	Idle       Mode = "idle"
	Listening  Mode = "listening"
	Processing Mode = "processing"
	Error      Mode = "error"
)

// State is what the tray displays for a mode.
type State struct {
	Mode    Mode   `json:"mode"`
	Icon    string `json:"icon"`
	Tooltip string `json:"tooltip"`
}

var table = []State{
	{Idle, "icons/icon.png", "Slovo Voice Assistant"},
	{Listening, "icons/icon-listening.png", "Slovo - Listening..."},
	{Processing, "icons/icon-processing.png", "Slovo - Processing..."},
	{Error, "icons/icon-error.png", "Slovo - Error"},
}

// Lookup returns the display state for m. Unknown modes fall back to Idle.
func Lookup(m Mode) State {
	for _, s := range table {
		if s.Mode == m {
			return s
		}
	}
	return table[0]
}

// ParseMode parses a mode token, ignoring case and surrounding space.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range table {
		if st.Mode == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("tray: unknown mode %q (want idle|listening|processing|error)", s)
}

// All returns the whole table in display order.
func All() []State {
	return append([]State(nil), table...)
}
