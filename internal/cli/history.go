package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pkl/internal/history"
	"github.com/mesh-intelligence/pkl/internal/paths"
	"github.com/mesh-intelligence/pkl/pkg/types"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently installed packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := history.Open(paths.HistoryPath(homeDir))
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer h.Close()

			entries, err := h.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(entries) == 0 {
				printSuccess(cmd.OutOrStdout(), "no installs")
				return nil
			}

			lines := make([]string, 0, len(entries))
			for _, e := range entries {
				ref := types.PackageReference{Name: e.Name, Version: e.Version}
				lines = append(lines, fmt.Sprintf(" - %s %s (%s) → %s in %s",
					e.InstalledAt.Local().Format(time.DateTime), e.Requested, e.Monorepo, ref, e.Project))
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("showing %d %s", len(entries), plural(len(entries), "install")), lines...)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of installs to show (0 for all)")
	return cmd
}
