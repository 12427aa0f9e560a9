// Package cli implements the ckx command-line interface. Commands are thin:
// they resolve the workspace and profile, then call into the workspace store
// and the build-configuration generator.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/ckx/internal/buildconf"
	"github.com/mesh-intelligence/ckx/internal/paths"
	"github.com/mesh-intelligence/ckx/internal/version"
	"github.com/mesh-intelligence/ckx/internal/workspace"
	"github.com/mesh-intelligence/ckx/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errUsage marks command-line mistakes.
var errUsage = errors.New("usage")

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	home      string
	workspace string
	verbose   bool
}

// app is the state shared by subcommands. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	fs    afero.Fs
	flags rootFlags

	settings types.Settings
	config   *viper.Viper
	logger   *slog.Logger
	store    *workspace.Store
	gen      *buildconf.Generator

	// hint is the absolute --workspace value, or the working directory.
	hint string
}

// NewRootCmd creates the top-level "ckx" command over the OS filesystem.
func NewRootCmd() *cobra.Command {
	return newRootCmd(afero.NewOsFs())
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs}
	root := &cobra.Command{
		Use:   "ckx",
		Short: "Manage build profiles and build configuration of a catkin workspace",
		Long: "ckx keeps per-profile configuration of a workspace in .ckx_tools and\n" +
			"generates config.cmake, toolchain.cmake and session scripts for each profile.",
		Version:           version.Info(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	root.PersistentFlags().StringVar(&a.flags.home, "home", "", "ckx home directory (default: $CKX_HOME or ~/.config/ckx)")
	root.PersistentFlags().StringVarP(&a.flags.workspace, "workspace", "w", "", "workspace directory (default: current directory)")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newProfileCmd(a))
	root.AddCommand(newConfigCmd(a))

	return root
}

// setup resolves settings and builds the store and generator. Pending
// metadata migrations of an enclosing workspace run here so they are logged
// once per invocation.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	home, err := paths.ResolveHome(a.flags.home)
	if err != nil {
		return fmt.Errorf("resolve home: %w", err)
	}
	a.settings = types.Settings{Home: home, Version: version.Version}
	if err := a.settings.Validate(); err != nil {
		return err
	}

	a.config, err = loadConfig(a.fs, home)
	if err != nil {
		return err
	}

	level, err := parseLevel(a.config.GetString(cfgKeyLogLevel), a.flags.verbose)
	if err != nil {
		return err
	}
	a.logger = newLogger(cmd.ErrOrStderr(), level)

	a.store = workspace.NewStore(a.fs, a.settings, workspace.WithLogger(a.logger))
	a.gen = buildconf.NewGenerator(a.fs, a.settings, buildconf.WithLogger(a.logger))

	a.hint, err = paths.ResolveWorkspaceHint(a.flags.workspace)
	if err != nil {
		return fmt.Errorf("resolve workspace: %w", err)
	}
	if ws, ok := a.store.FindEnclosingWorkspace(a.hint); ok {
		report, err := a.store.Migrate(ws)
		if err != nil {
			return err
		}
		if report.Migrated() {
			a.logger.Info("metadata migrated", "workspace", ws, "from", report.From, "to", report.To, "steps", len(report.Applied))
		}
	}
	return nil
}

// workspace returns the workspace enclosing the hint.
func (a *app) workspace() (string, error) {
	ws, ok := a.store.FindEnclosingWorkspace(a.hint)
	if !ok {
		return "", fmt.Errorf("%w: no workspace at or above %s (run ckx init)", types.ErrWorkspaceNotFound, a.hint)
	}
	return ws, nil
}

// selectProfile picks the profile a command acts on: the flag value, then the
// parallel build directory the working directory sits in, then the active
// profile.
func (a *app) selectProfile(ws, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if cwd, err := os.Getwd(); err == nil {
		profile, ok, err := a.store.FindEnclosingProfile(cwd, ws)
		if err != nil {
			return "", err
		}
		if ok {
			return profile, nil
		}
	}
	return a.store.ActiveProfile(ws)
}

// exactArgs is cobra.ExactArgs with usage errors marked.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return nil
	}
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	for _, kind := range []error{
		errUsage,
		types.ErrNotFound,
		types.ErrConflict,
		types.ErrInvalidName,
		types.ErrUnexpectedShape,
	} {
		if errors.Is(err, kind) {
			return exitUserError
		}
	}
	return exitSysError
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ckx:", err)
		os.Exit(exitCode(err))
	}
}
