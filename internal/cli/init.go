package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a workspace",
		Long: "Create the .ckx_tools metadata directory in the workspace directory.\n" +
			"With --reset, existing metadata of every profile is deleted first.",
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.InitMetadataRoot(a.hint, reset); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized workspace %s\n", a.hint)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete existing metadata before initializing")
	return cmd
}
