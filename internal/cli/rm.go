package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pkl/internal/mapping"
	"github.com/mesh-intelligence/pkl/internal/paths"
)

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <monorepo-name>",
		Aliases: []string{"remove"},
		Short:   "Remove a named monorepo",
		Long: `Removes a monorepo by name, so it no longer shows in the monorepo list (ls)
and cannot be used when running install.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			store := mapping.NewStore(paths.MappingPath(homeDir))
			removed, ok, err := store.Delete(name)
			if err != nil {
				return fmt.Errorf("save mapping: %w", err)
			}
			if !ok {
				printSuccess(cmd.OutOrStdout(), fmt.Sprintf("removed %s (key not set)", name))
				return nil
			}

			printSuccess(cmd.OutOrStdout(), "removed "+name, " - Removed mapping to "+removed)
			return nil
		},
	}
}
