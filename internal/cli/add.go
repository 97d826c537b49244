package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pkl/internal/mapping"
	"github.com/mesh-intelligence/pkl/internal/paths"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <monorepo-name> [path]",
		Short: "Add a named monorepo",
		Long: `Adds a monorepo name and location, so it shows in the monorepo list (ls) and
can be used when running install. If a path to the monorepo folder is not
provided, the current working directory is used instead.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runAdd,
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	var path string
	var err error
	if len(args) == 2 {
		path, err = filepath.Abs(args[1])
	} else {
		path, err = getwd()
	}
	if err != nil {
		return fmt.Errorf("resolve monorepo path: %w", err)
	}

	store := mapping.NewStore(paths.MappingPath(homeDir))
	previous, replaced, err := store.Add(name, path)
	if err != nil {
		return fmt.Errorf("save mapping: %w", err)
	}

	context := []string{" - Name mapped to " + path}
	if replaced {
		context = append(context, " - Existing entry replaced "+previous)
	}
	printSuccess(cmd.OutOrStdout(), "added "+name, context...)
	return nil
}
