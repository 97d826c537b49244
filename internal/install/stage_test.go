package install

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage(t *testing.T) {
	project := t.TempDir()
	src := filepath.Join(t.TempDir(), "dep-1.0.0.tgz")
	require.NoError(t, os.WriteFile(src, []byte("tarball"), 0o644))

	dst, err := Stage(project, src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(project, ".pkl", "dep-1.0.0.tgz"), dst)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "tarball", string(data))
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "archive is moved, not copied")
}

func TestStage_ExistingStagingDirectory(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, ".pkl"), 0o755))
	src := filepath.Join(t.TempDir(), "dep.tgz")
	require.NoError(t, os.WriteFile(src, nil, 0o644))

	_, err := Stage(project, src)
	assert.NoError(t, err)
}

func TestStage_MissingSource(t *testing.T) {
	_, err := Stage(t.TempDir(), filepath.Join(t.TempDir(), "missing.tgz"))
	assert.Error(t, err)
}

func TestStage_StagingPathIsAFile(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, ".pkl"), nil, 0o644))
	src := filepath.Join(t.TempDir(), "dep.tgz")
	require.NoError(t, os.WriteFile(src, nil, 0o644))

	_, err := Stage(project, src)
	assert.Error(t, err)
}

func TestStage_RefusesDirectory(t *testing.T) {
	project := t.TempDir()
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "package.json"), []byte("{}"), 0o644))

	_, err := Stage(project, src)
	assert.Error(t, err)

	_, statErr := os.Stat(filepath.Join(src, "package.json"))
	assert.NoError(t, statErr, "directory is left in place")
	_, statErr = os.Stat(filepath.Join(project, ".pkl"))
	assert.True(t, os.IsNotExist(statErr))
}
