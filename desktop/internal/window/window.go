package window

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Main is the label of the application's primary surface.
const Main = "main"

// EventName is the name under which visibility changes are published.
const EventName = "window-visibility"

// ErrNotFound is matched by errors for labels that were never registered.
// The full message reads "<label> window not found".
var ErrNotFound = errors.New("window not found")

// Change describes a visibility change of one surface.
type Change struct {
	Label   string `json:"label"`
	Visible bool   `json:"visible"`
}

// Registry tracks the visibility of the UI surfaces the shell owns.
// Closing a surface hides it; surfaces are never destroyed while the
// process runs. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	visible  map[string]bool
	onChange func(Change)
}

// New returns an empty Registry. onChange, if non-nil, is called after every
// visibility change, outside the registry lock.
func New(onChange func(Change)) *Registry {
	return &Registry{visible: make(map[string]bool), onChange: onChange}
}

// Add registers label with the given initial visibility. Adding an existing
// label resets its visibility without notifying.
func (r *Registry) Add(label string, visible bool) {
	r.mu.Lock()
	r.visible[label] = visible
	r.mu.Unlock()
}

// Show makes label visible.
func (r *Registry) Show(label string) error { return r.set(label, true) }

// Hide makes label invisible.
func (r *Registry) Hide(label string) error { return r.set(label, false) }

// RequestClose handles a user close request by hiding the surface, so the
// process keeps running in the tray.
func (r *Registry) RequestClose(label string) error { return r.set(label, false) }

// Visible reports whether label is currently shown.
func (r *Registry) Visible(label string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.visible[label]
	if !ok {
		return false, notFound(label)
	}
	return v, nil
}

// Snapshot returns the visibility of every surface, sorted by label.
func (r *Registry) Snapshot() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Change, 0, len(r.visible))
	for l, v := range r.visible {
		out = append(out, Change{Label: l, Visible: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func (r *Registry) set(label string, visible bool) error {
	r.mu.Lock()
	prev, ok := r.visible[label]
	if !ok {
		r.mu.Unlock()
		return notFound(label)
	}
	r.visible[label] = visible
	r.mu.Unlock()

	if prev != visible && r.onChange != nil {
		r.onChange(Change{Label: label, Visible: visible})
	}
	return nil
}

func notFound(label string) error {
	return fmt.Errorf("%s %w", label, ErrNotFound)
}
