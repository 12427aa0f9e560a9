package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/ckx/pkg/types"
)

const testVersion = "0.4.2"

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	settings := types.Settings{Home: "/home/user/.config/ckx", Version: testVersion}
	return NewStore(fs, settings), fs
}

func mkdirAll(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(path, 0o755))
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

// initWorkspace creates and initializes a workspace at path.
func initWorkspace(t *testing.T, s *Store, fs afero.Fs, path string) {
	t.Helper()
	mkdirAll(t, fs, path)
	require.NoError(t, s.InitMetadataRoot(path, false))
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, "/ws/.ckx_tools", MetadataRoot("/ws"))
	assert.Equal(t, "/ws/.ckx_tools/profiles", ProfilesPath("/ws"))
	assert.Equal(t, "/ws/.ckx_tools/profiles/debug", ProfilePath("/ws", "debug"))
	assert.Equal(t, "/ws/.ckx_tools/profiles/debug/build.yaml", MetadataFile("/ws", "debug", "build"))
}

func TestBuildRoot(t *testing.T) {
	assert.Equal(t, "/ws", BuildRoot("/ws", DefaultProfileName))
	assert.Equal(t, "/ws", BuildRoot("/ws", ""))
	assert.Equal(t, "/ws/arm", BuildRoot("/ws", "arm"))
}

func TestValidProfileName(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		wantErr bool
	}{
		{"plain name", "debug", false},
		{"dotted name", "release.arm", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"parent", "..", true},
		{"separator", "a/b", true},
		{"escape", "../x", true},
		{"index file", ProfilesIndexFileName, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validProfileName(tt.profile)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodeDocument(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Document
		wantErr error
	}{
		{name: "empty file", input: "", want: Document{}},
		{name: "null document", input: "~\n", want: Document{}},
		{name: "mapping", input: "a: 1\nb: x\n", want: Document{"a": 1, "b": "x"}},
		{name: "sequence", input: "- a\n- b\n", wantErr: types.ErrUnexpectedShape},
		{name: "scalar", input: "hello\n", wantErr: types.ErrUnexpectedShape},
		{name: "malformed", input: "a: [1, 2\n", wantErr: types.ErrUnexpectedShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeDocument([]byte(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoveTreeMergesIntoExistingDestination(t *testing.T) {
	s, fs := newTestStore(t)
	writeFile(t, fs, "/src/a.yaml", "a: 1\n")
	writeFile(t, fs, "/src/nested/b.yaml", "b: 2\n")
	writeFile(t, fs, "/dst/keep.yaml", "k: 3\n")

	require.NoError(t, s.moveTree("/src", "/dst"))

	exists, err := afero.Exists(fs, "/src")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, "a: 1\n", readFile(t, fs, "/dst/a.yaml"))
	assert.Equal(t, "b: 2\n", readFile(t, fs, "/dst/nested/b.yaml"))
	assert.Equal(t, "k: 3\n", readFile(t, fs, "/dst/keep.yaml"))
}

func TestMoveTreeKeepsSymlinks(t *testing.T) {
	dir := t.TempDir()
	fs := afero.NewOsFs()
	s := NewStore(fs, types.Settings{Home: filepath.Join(dir, "home"), Version: testVersion})
	src, dst, shared := filepath.Join(dir, "src"), filepath.Join(dir, "dst"), filepath.Join(dir, "shared")
	writeFile(t, fs, filepath.Join(src, "config.yaml"), "a: 1\n")
	writeFile(t, fs, filepath.Join(shared, "notes.txt"), "shared\n")
	require.NoError(t, os.Symlink("config.yaml", filepath.Join(src, "alias.yaml")))
	require.NoError(t, os.Symlink(shared, filepath.Join(src, "shared")))

	require.NoError(t, s.moveTree(src, dst))

	link, err := os.Readlink(filepath.Join(dst, "alias.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", link)
	link, err = os.Readlink(filepath.Join(dst, "shared"))
	require.NoError(t, err)
	assert.Equal(t, shared, link)

	_, err = os.Lstat(src)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, "shared\n", readFile(t, fs, filepath.Join(shared, "notes.txt")), "link targets are left alone")
}
