package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/ckx/pkg/types"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage build profiles",
	}
	cmd.AddCommand(newProfileListCmd(a))
	cmd.AddCommand(newProfileSetCmd(a))
	cmd.AddCommand(newProfileAddCmd(a))
	cmd.AddCommand(newProfileRemoveCmd(a))
	return cmd
}

func newProfileListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the profiles of the workspace",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			names, err := a.store.ProfileNames(ws)
			if err != nil {
				return err
			}
			active, err := a.store.ActiveProfile(ws)
			if err != nil {
				return err
			}

			r := lipgloss.NewRenderer(cmd.OutOrStdout())
			activeStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintf(out, "No profiles yet; %s is active\n", active)
				return nil
			}
			for _, name := range names {
				if name == active {
					fmt.Fprintln(out, activeStyle.Render("* "+name+" (active)"))
					continue
				}
				fmt.Fprintln(out, "  "+name)
			}
			return nil
		},
	}
}

func newProfileSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Make a profile the active one",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			name := args[0]
			exists, err := a.store.ProfileExists(ws, name)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("profile %q %w (use ckx profile add)", name, types.ErrNotFound)
			}
			if err := a.store.SetActiveProfile(ws, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Activated profile %s\n", name)
			return nil
		},
	}
}

func newProfileAddCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a profile",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			name := args[0]
			exists, err := a.store.ProfileExists(ws, name)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("profile %q: %w: already exists (use --force to reset it)", name, types.ErrConflict)
			}
			if err := a.store.InitProfile(ws, name, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created profile %s\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "reset the profile if it already exists")
	return cmd
}

func newProfileRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a profile and its build directory",
		Long: "Remove the metadata of a profile and the build artifacts generated for it.\n" +
			"Removing the default profile cleans the generated files in the workspace root.",
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			name := args[0]
			exists, err := a.store.ProfileExists(ws, name)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("profile %q %w", name, types.ErrNotFound)
			}
			if err := a.store.RemoveProfile(ws, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed profile %s\n", name)
			return nil
		},
	}
}
