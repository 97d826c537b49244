package install

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mesh-intelligence/pkl/internal/pm"
	"github.com/mesh-intelligence/pkl/internal/runner"
)

// Result is the outcome of an install. Failed is set when the package
// manager wrote anything other than warnings to stderr.
type Result struct {
	Failed bool
	Stdout string
	Stderr string
}

// Installer adds staged archives to a project with its package manager.
type Installer struct {
	runner runner.Runner
	pm     pm.PackageManager
}

// NewInstaller returns an Installer.
func NewInstaller(r runner.Runner, manager pm.PackageManager) *Installer {
	return &Installer{runner: r, pm: manager}
}

// Install adds the archive at archivePath as a dependency of the project in
// projectDir, referring to it by its project-relative path.
func (i *Installer) Install(ctx context.Context, projectDir, archivePath string) (Result, error) {
	rel, err := filepath.Rel(projectDir, archivePath)
	if err != nil {
		return Result{}, fmt.Errorf("relative archive path: %w", err)
	}

	res, err := i.pm.InstallFromPath(ctx, i.runner, projectDir, rel)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Failed: i.pm.IsInstallFailure(res.Stderr),
		Stdout: res.Stdout,
		Stderr: res.Stderr,
	}, nil
}
