package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pkl/internal/paths"
	"github.com/mesh-intelligence/pkl/internal/runner"
	"github.com/mesh-intelligence/pkl/internal/runner/runnertest"
)

// env is an isolated pkl home, project directory and scripted runner.
type env struct {
	home    string
	project string
	fake    *runnertest.Fake
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		home:    filepath.Join(t.TempDir(), ".pkl"),
		project: t.TempDir(),
		fake:    runnertest.New(),
	}
	t.Setenv(paths.EnvHome, "")
	t.Setenv("PKL_PACKAGE_MANAGER", "")

	origRunner, origGetwd := newRunner, getwd
	newRunner = func() runner.Runner { return e.fake }
	getwd = func() (string, error) { return e.project, nil }
	t.Cleanup(func() { newRunner, getwd = origRunner, origGetwd })
	return e
}

// run executes pkl with args and returns stdout, stderr and the error.
func (e *env) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--home", e.home}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestAddLsRm(t *testing.T) {
	e := newEnv(t)
	mono := t.TempDir()

	out, _, err := e.run(t, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "success: no monorepos")

	out, _, err = e.run(t, "add", "web", mono)
	require.NoError(t, err)
	assert.Contains(t, out, "success: added web")
	assert.Contains(t, out, " - Name mapped to "+mono)
	assert.NotContains(t, out, "Existing entry replaced")

	out, _, err = e.run(t, "add", "web")
	require.NoError(t, err)
	assert.Contains(t, out, " - Name mapped to "+e.project)
	assert.Contains(t, out, " - Existing entry replaced "+mono)

	_, _, err = e.run(t, "add", "api", mono)
	require.NoError(t, err)

	out, _, err = e.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "success: showing 2 monorepos")
	assert.Contains(t, out, " - web → "+e.project+"\n - api → "+mono)

	out, _, err = e.run(t, "rm", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "success: removed missing (key not set)")

	out, _, err = e.run(t, "remove", "web")
	require.NoError(t, err)
	assert.Contains(t, out, "success: removed web")
	assert.Contains(t, out, " - Removed mapping to "+e.project)

	out, _, err = e.run(t, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "success: showing 1 monorepo\n")
}

func TestAddRelativePathBecomesAbsolute(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run(t, "add", "rel", "some/relative/dir")
	require.NoError(t, err)

	abs, err := filepath.Abs("some/relative/dir")
	require.NoError(t, err)
	assert.Contains(t, out, " - Name mapped to "+abs)
}

func TestArgumentValidation(t *testing.T) {
	e := newEnv(t)

	for _, args := range [][]string{
		{"add"},
		{"rm"},
		{"install"},
		{"install", "mono"},
		{"ls", "extra"},
	} {
		_, _, err := e.run(t, args...)
		assert.Error(t, err, "args %v", args)
	}
}

func TestInstallUnknownMonorepo(t *testing.T) {
	e := newEnv(t)

	_, stderr, err := e.run(t, "install", "nope", "pkg")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, "error: unknown monorepo name")
	assert.Empty(t, e.fake.Calls())
}

func TestVersion(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pkl v")
	assert.Contains(t, out, modulePath)
}

func TestDefaultConfigWritten(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.run(t, "ls")
	require.NoError(t, err)

	data, err := os.ReadFile(paths.ConfigPath(e.home))
	require.NoError(t, err)
	var cfg configFile
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, defaultConfig(), cfg)
}

func TestInvalidLogLevel(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.home, 0o755))
	require.NoError(t, os.WriteFile(paths.ConfigPath(e.home), []byte("log_level: chatty\n"), 0o644))

	_, _, err := e.run(t, "ls")
	assert.ErrorContains(t, err, "invalid log_level")
}
