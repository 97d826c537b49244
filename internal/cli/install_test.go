package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pkl/internal/paths"
	"github.com/mesh-intelligence/pkl/internal/runner"
	"github.com/mesh-intelligence/pkl/internal/runner/runnertest"
)

const (
	npmListWithoutLerna  = `{"name": "my-monorepo"}`
	yarnListWithoutLerna = `{"type":"tree","data":{"type":"list","trees":[]}}`
)

// addMonorepo registers a monorepo holding packages/test-dependency
// (named mock-dependency) and scripts its listing.
func (e *env) addMonorepo(t *testing.T, version string) string {
	t.Helper()
	mono := t.TempDir()
	dir := filepath.Join(mono, "packages", "test-dependency")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	content := `{"name": "mock-dependency"}`
	if version != "" {
		content = `{"name": "mock-dependency", "version": "` + version + `"}`
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0o644))

	e.fake.
		OnOutput("npm ls lerna --json", npmListWithoutLerna, "").
		OnOutput("yarn list --depth=0 --pattern=lerna --json", yarnListWithoutLerna, "").
		OnOutput("lerna ls --json", `[{"name":"mock-dependency","version":"1.0.0","location":"`+dir+`"}]`, "")

	_, _, err := e.run(t, "add", "test-monorepo", mono)
	require.NoError(t, err)
	return dir
}

func (e *env) scriptPack(pkgDir, cmd, stdout, archive string) {
	e.fake.On(cmd, runnertest.Response{
		Result: runner.Result{Stdout: stdout, Stderr: "lerna success exec Executed command in 1 package"},
		Hook: func(string) {
			_ = os.WriteFile(filepath.Join(pkgDir, archive), []byte("tgz"), 0o644)
		},
	})
}

func TestInstallSuccess(t *testing.T) {
	e := newEnv(t)
	dir := e.addMonorepo(t, "")
	e.scriptPack(dir, "lerna exec --scope mock-dependency -- npm pack", "mock-dependency-0.0.0.tgz\n", "mock-dependency-0.0.0.tgz")
	e.fake.OnOutput("npm install "+filepath.Join(".pkl", "mock-dependency-0.0.0.tgz"), "+ mock-dependency@0.0.0", "npm WARN deprecated x")

	out, stderr, err := e.run(t, "install", "test-monorepo", "test-dependency")
	require.NoError(t, err)
	assert.Contains(t, out, "success: installation complete")
	assert.Contains(t, out, " - test-dependency (test-monorepo) → mock-dependency@0.0.0")
	assert.Contains(t, stderr, "test-dependency - packing...")
	assert.Contains(t, stderr, "test-dependency - installed")

	_, statErr := os.Stat(filepath.Join(e.project, ".pkl", "mock-dependency-0.0.0.tgz"))
	assert.NoError(t, statErr)

	out, _, err = e.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "success: showing 1 install\n")
	assert.Contains(t, out, "test-dependency (test-monorepo) → mock-dependency@0.0.0 in "+e.project)
}

func TestInstallWithYarn(t *testing.T) {
	e := newEnv(t)
	dir := e.addMonorepo(t, "1.0.0")
	e.scriptPack(dir, "lerna exec --scope mock-dependency -- yarn pack --json",
		`{"type":"success","data":"Wrote tarball to \"`+filepath.Join(dir, "mock-dependency-v1.0.0.tgz")+`\"."}`,
		"mock-dependency-v1.0.0.tgz")
	e.fake.OnOutput("yarn add file:"+filepath.Join(".pkl", "mock-dependency-v1.0.0.tgz"), "success Saved 1 new dependency.", "warning peer dep")

	for _, flag := range []string{"--yarn", "--use-alternate-package-manager"} {
		t.Run(flag, func(t *testing.T) {
			out, _, err := e.run(t, "install", "test-monorepo", "mock-dependency", flag)
			require.NoError(t, err)
			assert.Contains(t, out, " - mock-dependency (test-monorepo) → mock-dependency@1.0.0")
		})
	}
}

func TestInstallPackageManagerFromEnv(t *testing.T) {
	e := newEnv(t)
	t.Setenv("PKL_PACKAGE_MANAGER", "pnpm")
	e.addMonorepo(t, "1.0.0")

	_, _, err := e.run(t, "install", "test-monorepo", "test-dependency")
	assert.ErrorContains(t, err, "unknown package manager")
}

func TestInstallPackFailure(t *testing.T) {
	e := newEnv(t)
	e.addMonorepo(t, "1.0.0")
	e.fake.On("lerna exec --scope mock-dependency -- npm pack", runnertest.Response{
		Result: runner.Result{Stderr: "lerna ERR! npm pack exited 127 in 'test-dependency'", ExitCode: 1},
	})

	_, stderr, err := e.run(t, "install", "test-monorepo", "test-dependency")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "error: test-dependency: pack failed\nlerna ERR! npm pack exited 127 in 'test-dependency'")
	assert.Contains(t, stderr, "test-dependency - error")
}

func TestInstallLocateFailureNamesPackage(t *testing.T) {
	e := newEnv(t)
	e.addMonorepo(t, "1.0.0")

	_, stderr, err := e.run(t, "install", "test-monorepo", "missing-dependency")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "error: missing-dependency: unable to read manifest for missing-dependency")
}

func TestInstallHistoryDisabled(t *testing.T) {
	e := newEnv(t)
	dir := e.addMonorepo(t, "1.0.0")
	require.NoError(t, os.WriteFile(paths.ConfigPath(e.home), []byte("history: false\n"), 0o644))
	e.scriptPack(dir, "lerna exec --scope mock-dependency -- npm pack", "mock-dependency-1.0.0.tgz", "mock-dependency-1.0.0.tgz")
	e.fake.OnOutput("npm install "+filepath.Join(".pkl", "mock-dependency-1.0.0.tgz"), "", "")

	_, _, err := e.run(t, "install", "test-monorepo", "test-dependency")
	require.NoError(t, err)

	_, statErr := os.Stat(paths.HistoryPath(e.home))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInstallPackageManagerFlagOverridesEnvAndConfig(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		config string
	}{
		{name: "env says yarn", env: "yarn"},
		{name: "config says yarn", config: "package_manager: yarn\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			dir := e.addMonorepo(t, "1.0.0")
			if tt.env != "" {
				t.Setenv("PKL_PACKAGE_MANAGER", tt.env)
			}
			if tt.config != "" {
				require.NoError(t, os.WriteFile(paths.ConfigPath(e.home), []byte(tt.config), 0o644))
			}
			e.scriptPack(dir, "lerna exec --scope mock-dependency -- npm pack", "mock-dependency-1.0.0.tgz", "mock-dependency-1.0.0.tgz")
			e.fake.OnOutput("npm install "+filepath.Join(".pkl", "mock-dependency-1.0.0.tgz"), "", "")

			out, _, err := e.run(t, "install", "test-monorepo", "test-dependency", "--package-manager", "npm")
			require.NoError(t, err)
			assert.Contains(t, out, "success: installation complete")
			assert.NotContains(t, e.fake.Commands(), "lerna exec --scope mock-dependency -- yarn pack --json")
		})
	}
}

func TestInstallPackageManagerFromConfigWithoutFlag(t *testing.T) {
	e := newEnv(t)
	e.addMonorepo(t, "1.0.0")
	require.NoError(t, os.WriteFile(paths.ConfigPath(e.home), []byte("package_manager: yarn\n"), 0o644))

	_, _, err := e.run(t, "install", "test-monorepo", "test-dependency")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, e.fake.Commands(), "lerna exec --scope mock-dependency -- yarn pack --json")
}

func TestInstallPackageManagerFlagConflictsWithYarn(t *testing.T) {
	e := newEnv(t)
	e.addMonorepo(t, "1.0.0")

	_, _, err := e.run(t, "install", "test-monorepo", "test-dependency", "--package-manager", "npm", "--yarn")
	assert.Error(t, err)
	assert.Empty(t, e.fake.Calls())
}
