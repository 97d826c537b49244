// Package manifest reads package.json files and temporarily patches them
// for tools that refuse to work on unversioned packages.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mesh-intelligence/pkl/internal/orderedjson"
	"github.com/mesh-intelligence/pkl/pkg/types"
)

// File names used inside a package directory.
const (
	FileName     = "package.json"
	BackupSuffix = ".pkl_backup"
)

// Manifest is a parsed package.json. Fields other than name and version are
// kept verbatim and in order.
type Manifest struct {
	obj *orderedjson.Object
}

// Path returns the manifest path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// BackupPath returns the sidecar path used while a manifest is patched.
func BackupPath(dir string) string {
	return Path(dir) + BackupSuffix
}

// Read parses the manifest in dir.
func Read(dir string) (*Manifest, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return nil, err
	}
	obj, err := orderedjson.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", Path(dir), err)
	}
	return &Manifest{obj: obj}, nil
}

// Name returns the declared package name.
func (m *Manifest) Name() string {
	s, _ := m.obj.GetString("name")
	return s
}

// Version returns the declared version, or "" when unversioned. A version
// that is missing, null, false, 0 or an empty string counts as unversioned;
// any other non-string value is returned as its JSON text.
func (m *Manifest) Version() string {
	raw, ok := m.obj.Get("version")
	if !ok {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
	case float64:
		if v == 0 {
			return ""
		}
	}
	return strings.TrimSpace(string(raw))
}

// Reference returns the name@version reference, with DefaultVersion for an
// unversioned package.
func (m *Manifest) Reference() types.PackageReference {
	v := m.Version()
	if v == "" {
		v = types.DefaultVersion
	}
	return types.PackageReference{Name: m.Name(), Version: v}
}

// withVersion returns a copy of m with version set.
func (m *Manifest) withVersion(version string) *Manifest {
	c := m.obj.Clone()
	c.SetString("version", version)
	return &Manifest{obj: c}
}

// write renders m to the manifest path in dir.
func (m *Manifest) write(dir string) error {
	data, err := m.obj.Indent()
	if err != nil {
		return err
	}
	return os.WriteFile(Path(dir), data, 0o644)
}

// WithPlaceholderVersion runs fn while the manifest in dir carries a
// version. A versioned manifest is left alone. An unversioned one is moved
// to its backup path and replaced by a copy with DefaultVersion; the
// original is moved back before WithPlaceholderVersion returns, whether fn
// succeeds, fails or panics. A failed restore is joined to fn's error.
func WithPlaceholderVersion(dir string, fn func() error) (err error) {
	m, err := Read(dir)
	if err != nil {
		return err
	}
	if m.Version() != "" {
		return fn()
	}

	restore, err := patch(dir, m)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := restore(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()

	return fn()
}

// patch swaps the placeholder manifest in and returns the function that
// swaps the original back.
func patch(dir string, m *Manifest) (restore func() error, err error) {
	path, backup := Path(dir), BackupPath(dir)

	if err := os.Rename(path, backup); err != nil {
		return nil, fmt.Errorf("backing up %s: %w", path, err)
	}
	restore = func() error {
		if err := os.Rename(backup, path); err != nil {
			return fmt.Errorf("restoring %s: %w", path, err)
		}
		log.Debug().Str("path", path).Msg("manifest restored")
		return nil
	}

	if err := m.withVersion(types.DefaultVersion).write(dir); err != nil {
		return nil, errors.Join(fmt.Errorf("writing placeholder manifest: %w", err), restore())
	}
	log.Debug().Str("path", path).Str("version", types.DefaultVersion).Msg("manifest patched")
	return restore, nil
}
