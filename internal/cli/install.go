package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pkl/internal/history"
	"github.com/mesh-intelligence/pkl/internal/install"
	"github.com/mesh-intelligence/pkl/internal/mapping"
	"github.com/mesh-intelligence/pkl/internal/monorepo"
	"github.com/mesh-intelligence/pkl/internal/paths"
	"github.com/mesh-intelligence/pkl/internal/pm"
	"github.com/mesh-intelligence/pkl/pkg/types"
)

const flagPackageManager = "package-manager"

type installFlags struct {
	yarn      bool
	alternate bool
}

func newInstallCmd() *cobra.Command {
	var f installFlags
	cmd := &cobra.Command{
		Use:   "install <monorepo-name> <package-name...>",
		Short: "Install packages from the named monorepo in the current project",
		Long: `Installs the named packages from the named monorepo into the project where the
command is run. Packages can be referenced by their name (the name field of
their package.json) or by their folder name. Several packages can be listed;
they are installed in order and the first failure stops the rest.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, args, f)
		},
	}
	cmd.Flags().String(flagPackageManager, "", "package manager to use, npm or yarn (default from config)")
	cmd.Flags().BoolVar(&f.yarn, "yarn", false, "use yarn instead of npm")
	cmd.Flags().BoolVar(&f.alternate, "use-alternate-package-manager", false, "same as --yarn")
	cmd.MarkFlagsMutuallyExclusive(flagPackageManager, "yarn")
	cmd.MarkFlagsMutuallyExclusive(flagPackageManager, "use-alternate-package-manager")
	return cmd
}

func runInstall(cmd *cobra.Command, args []string, f installFlags) error {
	if err := config.BindPFlag(cfgKeyPackageManager, cmd.Flags().Lookup(flagPackageManager)); err != nil {
		return fmt.Errorf("bind --%s: %w", flagPackageManager, err)
	}
	pmName := config.GetString(cfgKeyPackageManager)
	if f.yarn || f.alternate {
		pmName = pm.NameYarn
	}
	manager, err := pm.New(pmName)
	if err != nil {
		return err
	}

	project, err := getwd()
	if err != nil {
		return fmt.Errorf("resolve project directory: %w", err)
	}

	r := newRunner()
	tool := monorepo.NewTool(r, manager, config.GetString(cfgKeyMonorepoTool))
	opts := []install.Option{install.WithProgress(progressPrinter{w: cmd.ErrOrStderr()})}
	if config.GetBool(cfgKeyHistory) {
		h, err := history.Open(paths.HistoryPath(homeDir))
		if err != nil {
			log.Warn().Err(err).Msg("install history unavailable")
		} else {
			defer h.Close()
			opts = append(opts, install.WithRecorder(h))
		}
	}

	store := mapping.NewStore(paths.MappingPath(homeDir))
	pipeline := install.NewPipeline(store, tool, install.NewInstaller(r, manager), opts...)
	report, err := pipeline.Run(cmd.Context(), install.Request{
		Monorepo:   args[0],
		Packages:   args[1:],
		ProjectDir: project,
	})
	if err != nil {
		reportInstallError(cmd, err)
		return errReported
	}

	printSuccess(cmd.OutOrStdout(), "installation complete", report.Summary()...)
	return nil
}

func reportInstallError(cmd *cobra.Command, err error) {
	var se *types.StageError
	if errors.As(err, &se) && se.Output != "" {
		printError(cmd.ErrOrStderr(), se.Error(), se.Output)
		return
	}
	printError(cmd.ErrOrStderr(), err.Error())
}
