package origin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slovo/slovo/desktop/internal/origin"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "tauri://localhost", want: "tauri://localhost"},
		{in: "HTTP://Tauri.Localhost/", want: "http://tauri.localhost"},
		{in: "http://127.0.0.1:1420", want: "http://127.0.0.1:1420"},
		{in: "*", wantErr: true},
		{in: "http://*.example", wantErr: true},
		{in: "localhost", wantErr: true},
		{in: "http://localhost/app", wantErr: true},
		{in: "http://user@localhost", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := origin.Normalize(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAllowList(t *testing.T) {
	list := origin.NewAllowList([]string{"tauri://localhost", "http://tauri.localhost", "bogus"})

	assert.True(t, list.Allowed(""), "no Origin header")
	assert.True(t, list.Allowed("tauri://localhost"))
	assert.True(t, list.Allowed("http://TAURI.localhost"))
	assert.False(t, list.Allowed("https://evil.example"))
	assert.False(t, list.Allowed("http://tauri.localhost:8080"))
	assert.False(t, list.Allowed("null"))
	assert.False(t, list.Allowed("bogus"))
}

func TestAllowList_ZeroValue(t *testing.T) {
	var list origin.AllowList
	assert.True(t, list.Allowed(""))
	assert.False(t, list.Allowed("tauri://localhost"))
}
