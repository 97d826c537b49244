// Package paths resolves the pkl home directory and the files kept in it,
// plus the staging directory inside a consuming project.
package paths

import (
	"os"
	"path/filepath"
)

// Directory and file names.
const (
	// DirName is used both for the per-user home (~/.pkl) and for the
	// staging directory inside a project (<project>/.pkl).
	DirName         = ".pkl"
	MappingFileName = "monorepo-mapping.json"
	ConfigFileName  = "config.yaml"
	HistoryFileName = "history.db"
)

// EnvHome overrides the pkl home directory.
const EnvHome = "PKL_HOME"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir func() (string, error)
}{
	homeDir: os.UserHomeDir,
}

// DefaultHomeDir returns ~/.pkl.
func DefaultHomeDir() (string, error) {
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

// ResolveHomeDir returns the pkl home directory following the precedence
// chain: flag > PKL_HOME env > DefaultHomeDir(). Explicit values are made
// absolute.
func ResolveHomeDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvHome); env != "" {
		return filepath.Abs(env)
	}
	return DefaultHomeDir()
}

// MappingPath returns the monorepo mapping file inside home.
func MappingPath(home string) string {
	return filepath.Join(home, MappingFileName)
}

// ConfigPath returns the config file inside home.
func ConfigPath(home string) string {
	return filepath.Join(home, ConfigFileName)
}

// HistoryPath returns the install history database inside home.
func HistoryPath(home string) string {
	return filepath.Join(home, HistoryFileName)
}

// StagingDir returns the directory that receives packed archives inside a
// consuming project.
func StagingDir(projectDir string) string {
	return filepath.Join(projectDir, DirName)
}
