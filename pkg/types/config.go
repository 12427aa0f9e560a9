package types

import (
	"errors"
	"path/filepath"
)

// Settings carries the process-wide values every entry point needs. It is
// built once by the caller and passed down explicitly.
type Settings struct {
	// Home is the ckx home directory. Its toolchains/ and platforms/
	// subdirectories hold the user's custom library.
	Home string `json:"home" yaml:"home"`

	// Version is the running tool version. It drives metadata migration.
	Version string `json:"version" yaml:"version"`
}

// Library subdirectory names under Home and inside the bundled resources.
const (
	ToolchainsDirName = "toolchains"
	PlatformsDirName  = "platforms"
)

// Settings validation errors.
var (
	ErrHomeEmpty    = errors.New("home directory must not be empty")
	ErrHomeRelative = errors.New("home directory must be absolute")
	ErrVersionEmpty = errors.New("tool version must not be empty")
)

// Validate checks that the Settings are usable. It returns a sentinel error
// from this package on failure.
func (s Settings) Validate() error {
	if s.Home == "" {
		return ErrHomeEmpty
	}
	if !filepath.IsAbs(s.Home) {
		return ErrHomeRelative
	}
	if s.Version == "" {
		return ErrVersionEmpty
	}
	return nil
}

// CustomToolchains returns the root of the user's toolchain library.
func (s Settings) CustomToolchains() string {
	return filepath.Join(s.Home, ToolchainsDirName)
}

// CustomPlatforms returns the root of the user's platform library.
func (s Settings) CustomPlatforms() string {
	return filepath.Join(s.Home, PlatformsDirName)
}
