// Package cli implements the pkl command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/pkl/internal/paths"
	"github.com/mesh-intelligence/pkl/internal/runner"
)

// Exit codes.
const (
	exitSuccess = 0
	exitError   = 1
)

// errReported is returned by commands that already printed their error.
var errReported = errors.New("error reported")

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	home    string
	verbose bool
}

var flags rootFlags

// State resolved by PersistentPreRunE for all subcommands.
var (
	homeDir string
	config  *viper.Viper
)

// Hooks replaced in tests.
var (
	newRunner = func() runner.Runner { return runner.Exec{} }
	getwd     = os.Getwd
)

// NewRootCmd creates the top-level "pkl" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pkl",
		Short: "Install packages from local monorepos as if they were published",
		Long: `pkl packs a package from a registered local monorepo checkout and installs
the tarball into the current project, without publishing it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			home, err := paths.ResolveHomeDir(flags.home)
			if err != nil {
				return fmt.Errorf("resolve pkl home: %w", err)
			}
			cfg, err := loadConfig(home)
			if err != nil {
				return err
			}
			if err := setupLogging(cmd.ErrOrStderr(), cfg.GetString(cfgKeyLogLevel), flags.verbose); err != nil {
				return err
			}
			homeDir, config = home, cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flags.home, "home", "", "pkl home directory (default: $PKL_HOME or ~/.pkl)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log every step and subprocess")

	root.AddCommand(newAddCmd())
	root.AddCommand(newRmCmd())
	root.AddCommand(newLsCmd())
	root.AddCommand(newInstallCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			printError(root.ErrOrStderr(), err.Error())
		}
		os.Exit(exitError)
	}
	os.Exit(exitSuccess)
}
