package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/ckx/internal/paths"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "CKX"

	cfgKeyDefaultPlatform  = "default_platform"
	cfgKeyDefaultToolchain = "default_toolchain"
	cfgKeyLogLevel         = "log_level"

	defaultLogLevel = "info"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# ckx settings

# Platform used by "ckx config" for profiles that have none, e.g. arm/cortex-a9.
# An empty value selects the bundled default platform.
default_platform: ""

# Toolchain used by "ckx config" for profiles that have none, e.g. gcc/arm-linux-gnueabihf.
default_toolchain: ""

# One of debug, info, warn, error. --verbose forces debug.
log_level: info
`

// loadConfig reads config.yaml from home using Viper, creating home and a
// default config.yaml on first run. Environment variables prefixed with CKX_
// override file values.
func loadConfig(fs afero.Fs, home string) (*viper.Viper, error) {
	if err := fs.MkdirAll(home, 0o755); err != nil {
		return nil, fmt.Errorf("ensure home: %w", err)
	}
	if err := ensureDefaultConfigFile(fs, home); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetDefault(cfgKeyDefaultPlatform, "")
	v.SetDefault(cfgKeyDefaultToolchain, "")
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(home)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in home.
func ensureDefaultConfigFile(fs afero.Fs, home string) error {
	path := paths.SettingsFile(home)
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("stat config file: %w", err)
	}
	if exists {
		return nil
	}
	if err := afero.WriteFile(fs, path, []byte(defaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
