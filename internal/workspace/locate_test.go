package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindEnclosingWorkspace(t *testing.T) {
	s, fs := newTestStore(t)
	mkdirAll(t, fs, "/tmp/ws/src/pkg")

	_, ok := s.FindEnclosingWorkspace("/tmp/ws/src/pkg")
	assert.False(t, ok, "no workspace before init")

	require.NoError(t, s.InitMetadataRoot("/tmp/ws", false))

	for _, start := range []string{"/tmp/ws", "/tmp/ws/src", "/tmp/ws/src/pkg", "/tmp/ws/src/pkg/missing"} {
		t.Run(start, func(t *testing.T) {
			got, ok := s.FindEnclosingWorkspace(start)
			require.True(t, ok)
			assert.Equal(t, "/tmp/ws", got)
		})
	}

	_, ok = s.FindEnclosingWorkspace("/tmp")
	assert.False(t, ok, "parent of a workspace is not inside it")
}

func TestFindEnclosingWorkspaceReturnsClosest(t *testing.T) {
	s, fs := newTestStore(t)
	mkdirAll(t, fs, "/outer/.ckx_tools")
	mkdirAll(t, fs, "/outer/inner/.ckx_tools")
	mkdirAll(t, fs, "/outer/inner/src")

	got, ok := s.FindEnclosingWorkspace("/outer/inner/src")
	require.True(t, ok)
	assert.Equal(t, "/outer/inner", got)
}

func TestFindEnclosingWorkspaceIgnoresMarkerFile(t *testing.T) {
	s, fs := newTestStore(t)
	writeFile(t, fs, "/ws/.ckx_tools", "not a directory")

	_, ok := s.FindEnclosingWorkspace("/ws")
	assert.False(t, ok)
}

func TestFindEnclosingProfile(t *testing.T) {
	s, fs := newTestStore(t)
	initWorkspace(t, s, fs, "/ws")
	require.NoError(t, s.InitProfile("/ws", "arm", false))
	mkdirAll(t, fs, "/ws/arm/build/pkg")
	mkdirAll(t, fs, "/ws/src/pkg")
	initWorkspace(t, s, fs, "/other")

	tests := []struct {
		name   string
		start  string
		hint   string
		want   string
		wantOK bool
	}{
		{name: "parallel build root", start: "/ws/arm", want: "arm", wantOK: true},
		{name: "deep inside parallel build", start: "/ws/arm/build/pkg", want: "arm", wantOK: true},
		{name: "hint in same workspace", start: "/ws/arm/build", hint: "/ws/src", want: "arm", wantOK: true},
		{name: "unregistered subdirectory", start: "/ws/src/pkg"},
		{name: "workspace root itself", start: "/ws"},
		{name: "hint in other workspace", start: "/ws/arm", hint: "/other"},
		{name: "hint outside any workspace", start: "/ws/arm", hint: "/elsewhere"},
		{name: "outside any workspace", start: "/elsewhere"},
		{name: "inside metadata marker", start: "/ws/.ckx_tools/profiles/arm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := s.FindEnclosingProfile(tt.start, tt.hint)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
