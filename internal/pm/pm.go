// Package pm wraps the package managers pkl can drive. Each manager knows
// its own command lines and how to read its own output.
package pm

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/pkl/internal/runner"
	"github.com/mesh-intelligence/pkl/pkg/types"
)

// Supported package manager names.
const (
	NameNPM  = "npm"
	NameYarn = "yarn"
)

// PackageManager is the per-tool strategy used by the monorepo adapter and
// the installer.
type PackageManager interface {
	// Name returns the executable name.
	Name() string

	// HasLocal reports whether dep is installed as a dependency of the
	// project in dir.
	HasLocal(ctx context.Context, r runner.Runner, dir, dep string) (bool, error)

	// PackCommand returns the command line that packs the current package
	// into a tarball.
	PackCommand() []string

	// ArchiveName extracts the tarball file name from the pack command's
	// stdout. It returns "" when the output names no archive.
	ArchiveName(stdout string) string

	// InstallFromPath adds the archive at relPath (relative to projectDir)
	// as a dependency of the project.
	InstallFromPath(ctx context.Context, r runner.Runner, projectDir, relPath string) (runner.Result, error)

	// IsInstallFailure classifies install stderr. Lines carrying the tool's
	// warning prefix are ignored; anything else is a failure.
	IsInstallFailure(stderr string) bool
}

// New returns the package manager with the given name. An empty name
// selects npm.
func New(name string) (PackageManager, error) {
	switch name {
	case "", NameNPM:
		return NPM{}, nil
	case NameYarn:
		return Yarn{}, nil
	default:
		return nil, fmt.Errorf("%w %q (valid: %s, %s)", types.ErrUnknownPackageManager, name, NameNPM, NameYarn)
	}
}

// hasErrorLines reports whether stderr holds a non-blank line that does not
// start with warningPrefix.
func hasErrorLines(stderr, warningPrefix string) bool {
	for _, line := range runner.SplitLines(stderr) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, warningPrefix) {
			continue
		}
		return true
	}
	return false
}
