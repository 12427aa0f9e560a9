package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHome_Linux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-only test")
	}

	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
		got, err := DefaultHome()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-config/ckx", got)
	})

	t.Run("falls back to ~/.config when XDG unset", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		got, err := DefaultHome()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "ckx"), got)
	})

	t.Run("home lookup failure propagates", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		saved := platformDir.homeDir
		t.Cleanup(func() { platformDir.homeDir = saved })
		platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }

		_, err := DefaultHome()
		assert.Error(t, err)
	})
}

func TestDefaultHome_Darwin(t *testing.T) {
	if runtime.GOOS != "darwin" {
		t.Skip("darwin-only test")
	}

	got, err := DefaultHome()
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Library", "Application Support", "ckx"), got)
}

func TestResolveHome(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		envVal  string
		wantSub string // substring the result must contain
	}{
		{
			name:    "flag wins over env",
			flag:    "/explicit/home",
			envVal:  "/env/home",
			wantSub: "/explicit/home",
		},
		{
			name:    "env wins when flag empty",
			flag:    "",
			envVal:  "/env/home",
			wantSub: "/env/home",
		},
		{
			name:    "platform default when both empty",
			flag:    "",
			envVal:  "",
			wantSub: "ckx",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvHome, tt.envVal)
			got, err := ResolveHome(tt.flag)
			require.NoError(t, err)
			assert.Contains(t, got, tt.wantSub)
			assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
		})
	}
}

func TestResolveHome_AbsolutePath(t *testing.T) {
	t.Run("relative flag becomes absolute", func(t *testing.T) {
		t.Setenv(EnvHome, "")
		got, err := ResolveHome("relative/path")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
	})

	t.Run("relative env becomes absolute", func(t *testing.T) {
		t.Setenv(EnvHome, "relative/env")
		got, err := ResolveHome("")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
	})
}

func TestSettingsFile(t *testing.T) {
	assert.Equal(t, "/opt/ckx/config.yaml", SettingsFile("/opt/ckx"))
}

func TestResolveWorkspaceHint(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	got, err := ResolveWorkspaceHint("")
	require.NoError(t, err)
	assert.Equal(t, cwd, got)

	got, err = ResolveWorkspaceHint("ws")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "ws"), got)
}
