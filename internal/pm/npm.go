package pm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/pkl/internal/runner"
)

const npmWarningPrefix = "npm WARN"

// NPM drives the npm CLI.
type NPM struct{}

// Name implements PackageManager.
func (NPM) Name() string { return NameNPM }

// HasLocal runs npm ls <dep> --json and looks for dep among the top-level
// dependencies. npm exits non-zero when dep is missing, so the exit code is
// ignored and only the JSON body is read.
func (NPM) HasLocal(ctx context.Context, r runner.Runner, dir, dep string) (bool, error) {
	res, err := r.Run(ctx, dir, NameNPM, "ls", dep, "--json")
	if err != nil {
		return false, err
	}

	var listing struct {
		Dependencies map[string]json.RawMessage `json:"dependencies"`
	}
	if err := json.Unmarshal([]byte(res.Stdout), &listing); err != nil {
		return false, fmt.Errorf("parsing npm ls output: %w", err)
	}
	_, ok := listing.Dependencies[dep]
	return ok, nil
}

// PackCommand implements PackageManager.
func (NPM) PackCommand() []string { return []string{NameNPM, "pack"} }

// ArchiveName returns the last non-empty stdout line, which npm pack uses
// to print the tarball name.
func (NPM) ArchiveName(stdout string) string {
	return runner.LastLine(stdout)
}

// InstallFromPath runs npm install <relPath>.
func (NPM) InstallFromPath(ctx context.Context, r runner.Runner, projectDir, relPath string) (runner.Result, error) {
	return r.Run(ctx, projectDir, NameNPM, "install", relPath)
}

// IsInstallFailure implements PackageManager.
func (NPM) IsInstallFailure(stderr string) bool {
	return hasErrorLines(stderr, npmWarningPrefix)
}
