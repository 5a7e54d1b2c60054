// Package window keeps the show/hide state of the desktop shell's surfaces.
//
// The shell registers its "main" surface at startup, hidden when launched
// with --autostart. Show, Hide and RequestClose flip visibility; a close
// request only hides the surface. Unknown labels fail with an error matching
// ErrNotFound whose text is "<label> window not found".
//
// Every actual change is passed to the onChange callback, which the desktop
// process wires to the ws hub under the event name "window-visibility".
package window
