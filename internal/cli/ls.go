package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pkl/internal/mapping"
	"github.com/mesh-intelligence/pkl/internal/paths"
)

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List added monorepos and their locations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := mapping.NewStore(paths.MappingPath(homeDir)).Load().Entries()
			if len(entries) == 0 {
				printSuccess(cmd.OutOrStdout(), "no monorepos")
				return nil
			}

			lines := make([]string, 0, len(entries))
			for _, e := range entries {
				lines = append(lines, fmt.Sprintf(" - %s → %s", e.Name, e.Path))
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("showing %d %s", len(entries), plural(len(entries), "monorepo")), lines...)
			return nil
		},
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
