// Package install stages packed archives into a project and installs them,
// running the whole locate, pack, stage, install sequence per package.
package install

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/pkl/internal/paths"
)

// Stage moves the archive at src into the project's staging directory,
// creating it if needed, and returns the archive's new path. Staged
// archives are left in place after installation. Only regular files are
// moved.
func Stage(projectDir, src string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("staging archive: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("staging archive: %s is not a file", src)
	}

	dir := paths.StagingDir(projectDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}

	dst := filepath.Join(dir, filepath.Base(src))
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("staging archive: %w", err)
	}
	return dst, nil
}
