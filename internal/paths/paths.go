// Package paths resolves the ckx home directory, which holds the user's
// settings file and the custom toolchain and platform libraries.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppDirName is the directory created under the platform configuration root.
const AppDirName = "ckx"

// EnvHome overrides the home directory.
const EnvHome = "CKX_HOME"

// SettingsFileName is the settings file inside the home directory.
const SettingsFileName = "config.yaml"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultHome returns the platform-specific default home directory.
//
// Linux:   $XDG_CONFIG_HOME/ckx (fallback ~/.config/ckx)
// macOS:   ~/Library/Application Support/ckx
// Windows: %APPDATA%/ckx
func DefaultHome() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppDirName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppDirName), nil
}

// ResolveHome returns the home directory following the precedence chain:
// flag > CKX_HOME env > DefaultHome(). The result is always absolute.
func ResolveHome(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvHome); env != "" {
		return filepath.Abs(env)
	}
	return DefaultHome()
}

// SettingsFile returns the settings file path inside home.
func SettingsFile(home string) string {
	return filepath.Join(home, SettingsFileName)
}

// ResolveWorkspaceHint returns the absolute form of the --workspace flag, or
// the current working directory when the flag is empty.
func ResolveWorkspaceHint(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	return os.Getwd()
}
