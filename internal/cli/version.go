package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/ckx/internal/version"
)

const modulePath = "github.com/mesh-intelligence/ckx"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ckx version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "ckx %s\nmodule: %s\n", version.Info(), modulePath)
			return nil
		},
	}
}
