package window_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slovo/slovo/desktop/internal/window"
)

type changes struct {
	mu  sync.Mutex
	got []window.Change
}

func (c *changes) record(ch window.Change) {
	c.mu.Lock()
	c.got = append(c.got, ch)
	c.mu.Unlock()
}

func TestRegistry_ShowHide(t *testing.T) {
	var c changes
	r := window.New(c.record)
	r.Add(window.Main, false)

	require.NoError(t, r.Show(window.Main))
	v, err := r.Visible(window.Main)
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, r.Hide(window.Main))
	v, _ = r.Visible(window.Main)
	assert.False(t, v)

	assert.Equal(t, []window.Change{
		{Label: "main", Visible: true},
		{Label: "main", Visible: false},
	}, c.got)
}

func TestRegistry_NoChangeNoNotification(t *testing.T) {
	var c changes
	r := window.New(c.record)
	r.Add(window.Main, true)

	require.NoError(t, r.Show(window.Main))
	require.NoError(t, r.Show(window.Main))
	assert.Empty(t, c.got)
}

func TestRegistry_RequestCloseHides(t *testing.T) {
	var c changes
	r := window.New(c.record)
	r.Add(window.Main, true)

	require.NoError(t, r.RequestClose(window.Main))
	v, err := r.Visible(window.Main)
	require.NoError(t, err)
	assert.False(t, v)
	assert.Equal(t, []window.Change{{Label: "main", Visible: false}}, c.got)
}

func TestRegistry_UnknownLabel(t *testing.T) {
	r := window.New(nil)

	for name, op := range map[string]func(string) error{
		"show":  r.Show,
		"hide":  r.Hide,
		"close": r.RequestClose,
	} {
		t.Run(name, func(t *testing.T) {
			err := op(window.Main)
			require.Error(t, err)
			assert.True(t, errors.Is(err, window.ErrNotFound))
			assert.Equal(t, "main window not found", err.Error())
		})
	}

	_, err := r.Visible("settings")
	assert.EqualError(t, err, "settings window not found")
}

func TestRegistry_Snapshot(t *testing.T) {
	r := window.New(nil)
	r.Add("settings", true)
	r.Add(window.Main, false)

	assert.Equal(t, []window.Change{
		{Label: "main", Visible: false},
		{Label: "settings", Visible: true},
	}, r.Snapshot())
}
