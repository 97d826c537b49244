package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pkl/pkg/pkl"
)

const modulePath = "github.com/mesh-intelligence/pkl"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pkl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "pkl v%s\nmodule: %s\n", pkl.Version, modulePath)
			return nil
		},
	}
}
