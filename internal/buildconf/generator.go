package buildconf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/spf13/afero"

	"github.com/mesh-intelligence/ckx/pkg/types"
)

// BuildType is the CMAKE_BUILD_TYPE seeded into a new config.cmake.
const BuildType = "RelWithDebInfo"

const (
	sessionScriptMode = 0o770
	generatedFileMode = 0o644
)

// overridesDirName is the directory under the ckx home the overrides module
// is installed into, so config.cmake can point at a real file.
const overridesDirName = "cmake"

// Generator writes build-configuration artifacts into build roots.
type Generator struct {
	fs         afero.Fs
	settings   types.Settings
	toolchains Library
	platforms  Library
	bundle     afero.Fs
	logger     *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for generated and skipped artifacts.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator returns a Generator that writes through fs and reads the
// custom library from settings.Home on the same filesystem.
func NewGenerator(fs afero.Fs, settings types.Settings, opts ...Option) *Generator {
	g := &Generator{
		fs:         fs,
		settings:   settings,
		toolchains: ToolchainLibrary(fs, settings),
		platforms:  PlatformLibrary(fs, settings),
		bundle:     bundled(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Toolchains returns the toolchain library the generator resolves against.
func (g *Generator) Toolchains() Library { return g.toolchains }

// Platforms returns the platform library the generator resolves against.
func (g *Generator) Platforms() Library { return g.platforms }

// configData fills config.cmake.tmpl.
type configData struct {
	Workspace     string
	BuildType     string
	DocPrefix     string
	Underlays     []string
	OverridesFile string
}

// GenerateConfigCache writes <buildRoot>/config.cmake from the platform file
// followed by the filled template. An existing cache is never touched and
// false is returned. The platform is resolved first, so an unknown platform
// fails even when the cache exists.
func (g *Generator) GenerateConfigCache(platform, workspace, buildRoot, docPrefix string, underlays []string) (bool, error) {
	resolved, err := g.platforms.Resolve(platform)
	if err != nil {
		return false, fmt.Errorf("platform: %w", err)
	}
	platformContent, err := resolved.Content()
	if err != nil {
		return false, err
	}

	target := filepath.Join(buildRoot, types.ConfigCacheFileName)
	exists, err := afero.Exists(g.fs, target)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", target, err)
	}
	if exists {
		g.logger.Debug("keeping existing config cache", "path", target)
		return false, nil
	}

	overrides, err := g.installOverrides()
	if err != nil {
		return false, err
	}
	var buf bytes.Buffer
	buf.Write(platformContent)
	err = g.render(&buf, configTemplatePath, configData{
		Workspace:     workspace,
		BuildType:     BuildType,
		DocPrefix:     docPrefix,
		Underlays:     underlays,
		OverridesFile: overrides,
	})
	if err != nil {
		return false, err
	}
	if err := afero.WriteFile(g.fs, target, buf.Bytes(), generatedFileMode); err != nil {
		return false, fmt.Errorf("write %s: %w", target, err)
	}
	g.logger.Info("generated config cache", "path", target, "platform", resolved.Path, "tier", resolved.Tier)
	return true, nil
}

// installOverrides copies the bundled overrides module into the ckx home and
// returns its path.
func (g *Generator) installOverrides() (string, error) {
	data, err := afero.ReadFile(g.bundle, overridesPath)
	if err != nil {
		return "", fmt.Errorf("read bundled overrides: %w", err)
	}
	dir := filepath.Join(g.settings.Home, overridesDirName)
	if err := g.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	target := filepath.Join(dir, filepath.Base(overridesPath))
	if err := afero.WriteFile(g.fs, target, data, generatedFileMode); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	return target, nil
}

// InstallOrUpdateToolchain copies the resolved toolchain module to
// <buildRoot>/toolchain.cmake, replacing any previous one. An empty toolchain
// removes the module instead.
func (g *Generator) InstallOrUpdateToolchain(toolchain, buildRoot string) error {
	target := filepath.Join(buildRoot, types.ToolchainFileName)
	if toolchain == "" {
		err := g.fs.Remove(target)
		if err == nil {
			g.logger.Info("removed toolchain module", "path", target)
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove %s: %w", target, err)
	}

	resolved, err := g.toolchains.Resolve(toolchain)
	if err != nil {
		return fmt.Errorf("toolchain: %w", err)
	}
	data, err := resolved.Content()
	if err != nil {
		return err
	}
	if err := afero.WriteFile(g.fs, target, data, generatedFileMode); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	g.logger.Info("installed toolchain module", "path", target, "toolchain", toolchain, "tier", resolved.Tier)
	return nil
}

// sessionData fills the session script templates.
type sessionData struct {
	Name string
	Cwd  string
}

// InstallSessionScripts renders every launcher template into buildRoot.
// Scripts that already exist are left alone.
func (g *Generator) InstallSessionScripts(name, buildRoot, workspace string) error {
	for _, script := range types.SessionScripts {
		target := filepath.Join(buildRoot, script)
		exists, err := afero.Exists(g.fs, target)
		if err != nil {
			return fmt.Errorf("stat %s: %w", target, err)
		}
		if exists {
			continue
		}
		var buf bytes.Buffer
		if err := g.render(&buf, filepath.Join(templatesDir, script), sessionData{Name: name, Cwd: workspace}); err != nil {
			return err
		}
		if err := afero.WriteFile(g.fs, target, buf.Bytes(), sessionScriptMode); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		// WriteFile is subject to the umask.
		if err := g.fs.Chmod(target, sessionScriptMode); err != nil {
			return fmt.Errorf("chmod %s: %w", target, err)
		}
		g.logger.Debug("installed session script", "path", target)
	}
	return nil
}

func (g *Generator) render(buf *bytes.Buffer, name string, data any) error {
	raw, err := afero.ReadFile(g.bundle, name)
	if err != nil {
		return fmt.Errorf("read template %s: %w", name, err)
	}
	tmpl, err := template.New(filepath.Base(name)).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}
	if err := tmpl.Execute(buf, data); err != nil {
		return fmt.Errorf("render template %s: %w", name, err)
	}
	return nil
}

// Environment describes the build root of one profile.
type Environment struct {
	Profile   string
	Workspace string
	BuildRoot string
	Platform  string
	Toolchain string
	DocPrefix string
	Underlays []string
}

// SessionName returns the launcher session name: the workspace directory
// name joined to the profile name.
func (e Environment) SessionName() string {
	profile := e.Profile
	if profile == "" {
		profile = "default"
	}
	return filepath.Base(e.Workspace) + "_" + profile
}

// Instantiate creates the build root when needed, then installs the session
// scripts, the config cache and the toolchain module. It stops at the first
// failure.
func (g *Generator) Instantiate(env Environment) error {
	if err := g.fs.MkdirAll(env.BuildRoot, 0o755); err != nil {
		return fmt.Errorf("create build root %s: %w", env.BuildRoot, err)
	}
	if err := g.InstallSessionScripts(env.SessionName(), env.BuildRoot, env.Workspace); err != nil {
		return err
	}
	if _, err := g.GenerateConfigCache(env.Platform, env.Workspace, env.BuildRoot, env.DocPrefix, env.Underlays); err != nil {
		return err
	}
	return g.InstallOrUpdateToolchain(env.Toolchain, env.BuildRoot)
}
