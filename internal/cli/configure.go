package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/ckx/internal/buildconf"
	"github.com/mesh-intelligence/ckx/internal/workspace"
)

type configFlags struct {
	profile        string
	platform       string
	toolchain      string
	noToolchain    bool
	underlays      string
	noUnderlays    bool
	docPrefix      string
	mergeDevel     bool
	isolateDevel   bool
	linkDevel      bool
	listToolchains bool
	listPlatforms  bool
	init           bool
}

func newConfigCmd(a *app) *cobra.Command {
	var f configFlags
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configure a profile and generate its build configuration",
		Long: "Store configuration options of a profile, then create its build root with\n" +
			"config.cmake, toolchain.cmake and the session scripts. Options not given\n" +
			"keep their stored values.",
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfig(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.profile, "profile", "p", "", "profile to configure (default: enclosing build directory or active profile)")
	fl.StringVar(&f.platform, "platform", "", "platform <family>/<name>")
	fl.StringVar(&f.toolchain, "toolchain", "", "toolchain <family>/<name>")
	fl.BoolVar(&f.noToolchain, "no-toolchain", false, "build with the host toolchain")
	fl.StringVar(&f.underlays, "underlays", "", "semi-colon separated list of underlay devel spaces (empty clears them)")
	fl.BoolVar(&f.noUnderlays, "no-underlays", false, "clear the stored underlays")
	fl.StringVar(&f.docPrefix, "doc-prefix", "", "documentation install prefix")
	fl.BoolVar(&f.mergeDevel, "merge-devel", false, "build every package into one devel space")
	fl.BoolVar(&f.isolateDevel, "isolate-devel", false, "build each package into its own devel space")
	fl.BoolVar(&f.linkDevel, "link-devel", false, "build into isolated devel spaces linked into one")
	fl.BoolVar(&f.listToolchains, "list-toolchains", false, "list the available toolchains and exit")
	fl.BoolVar(&f.listPlatforms, "list-platforms", false, "list the available platforms and exit")
	fl.BoolVar(&f.init, "init", false, "initialize the workspace if needed")
	cmd.MarkFlagsMutuallyExclusive("merge-devel", "isolate-devel", "link-devel")
	cmd.MarkFlagsMutuallyExclusive("toolchain", "no-toolchain")
	cmd.MarkFlagsMutuallyExclusive("underlays", "no-underlays")
	return cmd
}

func (a *app) runConfig(cmd *cobra.Command, f configFlags) error {
	out := cmd.OutOrStdout()
	if f.listToolchains || f.listPlatforms {
		if f.listToolchains {
			if err := renderLibrary(out, "Toolchains", a.gen.Toolchains()); err != nil {
				return err
			}
		}
		if f.listPlatforms {
			if err := renderLibrary(out, "Platforms", a.gen.Platforms()); err != nil {
				return err
			}
		}
		return nil
	}

	if f.init {
		if _, ok := a.store.FindEnclosingWorkspace(a.hint); !ok {
			if err := a.store.InitMetadataRoot(a.hint, false); err != nil {
				return err
			}
		}
	}
	ws, err := a.workspace()
	if err != nil {
		return err
	}
	profile, err := a.selectProfile(ws, f.profile)
	if err != nil {
		return err
	}

	doc, err := a.store.Metadata(ws, profile, workspace.VerbConfig)
	if err != nil {
		return err
	}
	opts, err := workspace.DecodeConfigOptions(doc)
	if err != nil {
		return err
	}
	a.applyConfigFlags(cmd, f, &opts)

	// opts holds the whole stored document, unknown keys included.
	if _, err := a.store.UpdateMetadata(ws, profile, workspace.VerbConfig, opts.Document(), workspace.UpdateOptions{Replace: true}); err != nil {
		return err
	}

	env := buildconf.Environment{
		Profile:   profile,
		Workspace: ws,
		BuildRoot: workspace.BuildRoot(ws, profile),
		Platform:  opts.Platform,
		Toolchain: opts.ToolchainName(),
		DocPrefix: opts.DocPrefix,
		Underlays: splitUnderlays(opts.Underlays),
	}
	if err := a.gen.Instantiate(env); err != nil {
		return err
	}
	return renderSummary(out, env, opts)
}

// applyConfigFlags overlays the flags given on the command line on the stored
// options. Unset platform and toolchain fall back to the settings defaults; a
// toolchain cleared with --no-toolchain is stored as ToolchainNone and stays
// cleared.
func (a *app) applyConfigFlags(cmd *cobra.Command, f configFlags, opts *workspace.ConfigOptions) {
	changed := cmd.Flags().Changed
	if changed("platform") {
		opts.Platform = f.platform
	} else if opts.Platform == "" {
		opts.Platform = a.config.GetString(cfgKeyDefaultPlatform)
	}
	switch {
	case f.noToolchain:
		opts.Toolchain = workspace.ToolchainNone
	case changed("toolchain"):
		opts.Toolchain = f.toolchain
	case opts.Toolchain == "":
		opts.Toolchain = a.config.GetString(cfgKeyDefaultToolchain)
	}
	switch {
	case f.noUnderlays:
		opts.Underlays = ""
	case changed("underlays"):
		opts.Underlays = f.underlays
	}
	if changed("doc-prefix") {
		opts.DocPrefix = f.docPrefix
	}
	switch {
	case f.mergeDevel:
		opts.DevelLayout = workspace.DevelLayoutMerged
	case f.isolateDevel:
		opts.DevelLayout = workspace.DevelLayoutIsolated
	case f.linkDevel:
		opts.DevelLayout = workspace.DevelLayoutLinked
	}
}

func splitUnderlays(s string) []string {
	var underlays []string
	for _, u := range strings.Split(s, ";") {
		if u = strings.TrimSpace(u); u != "" {
			underlays = append(underlays, u)
		}
	}
	return underlays
}
