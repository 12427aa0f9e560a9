package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/ckx/internal/buildconf"
	"github.com/mesh-intelligence/ckx/internal/workspace"
)

// renderLibrary prints both tiers of a library, one family/identifier per
// line.
func renderLibrary(w io.Writer, title string, lib buildconf.Library) error {
	r := lipgloss.NewRenderer(w)
	heading := r.NewStyle().Bold(true)
	family := r.NewStyle().Foreground(lipgloss.Color("6"))
	id := r.NewStyle().Foreground(lipgloss.Color("3"))

	fmt.Fprintln(w, heading.Render(title))
	for _, tier := range []buildconf.Tier{lib.Official, lib.Custom} {
		families, err := buildconf.ListFamilies(tier)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s (%s)\n", heading.Render(tier.Name), tier.Root)
		if len(families) == 0 {
			fmt.Fprintln(w, family.Render(" -- "))
			continue
		}
		names := make([]string, 0, len(families))
		for name := range families {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			for _, ident := range families[name] {
				fmt.Fprintln(w, family.Render(" -- "+name+"/")+id.Render(ident))
			}
		}
	}
	return nil
}

// renderSummary prints the configuration a profile was generated with.
func renderSummary(w io.Writer, env buildconf.Environment, opts workspace.ConfigOptions) error {
	r := lipgloss.NewRenderer(w)
	key := r.NewStyle().Bold(true).Width(14)
	value := r.NewStyle().Foreground(lipgloss.Color("3"))

	orNone := func(s, none string) string {
		if s == "" {
			return none
		}
		return s
	}
	rows := [][2]string{
		{"Profile", orNone(env.Profile, workspace.DefaultProfileName)},
		{"Workspace", env.Workspace},
		{"Build root", env.BuildRoot},
		{"Platform", orNone(env.Platform, "default")},
		{"Toolchain", orNone(env.Toolchain, "none")},
		{"Underlays", orNone(opts.Underlays, "none")},
		{"Devel layout", orNone(opts.DevelLayout, workspace.DevelLayoutMerged)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, key.Render(row[0])+value.Render(row[1])); err != nil {
			return err
		}
	}
	return nil
}
