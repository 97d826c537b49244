package mapping

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const fileMode = 0o644

// Store reads and writes a Mapping at a fixed file path.
type Store struct {
	path string
}

// NewStore returns a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the mapping file. A missing or malformed file yields an empty
// mapping; Load never fails.
func (s *Store) Load() *Mapping {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug().Err(err).Str("path", s.path).Msg("mapping unreadable, using empty mapping")
		}
		return New()
	}
	m, err := parse(data)
	if err != nil {
		log.Debug().Err(err).Str("path", s.path).Msg("mapping malformed, using empty mapping")
		return New()
	}
	return m
}

// Save writes m to the backing file, creating its directory first. The
// write goes through a temp file and rename so a crash never leaves a
// truncated mapping behind.
func (s *Store) Save(m *Mapping) error {
	data, err := m.MarshalIndent()
	if err != nil {
		return fmt.Errorf("encoding mapping: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".mapping-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("setting mapping permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing mapping: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Resolve loads the mapping and looks up name.
func (s *Store) Resolve(name string) (string, bool) {
	return s.Load().Resolve(name)
}

// Add registers path under name and persists the mapping. It returns the
// path that was replaced, if any.
func (s *Store) Add(name, path string) (previous string, replaced bool, err error) {
	m := s.Load()
	previous, replaced = m.Upsert(name, path)
	if err := s.Save(m); err != nil {
		return "", false, err
	}
	return previous, replaced, nil
}

// Delete removes name and persists the mapping. When name is not set the
// file is left untouched and ok is false.
func (s *Store) Delete(name string) (removed string, ok bool, err error) {
	m := s.Load()
	removed, ok = m.Remove(name)
	if !ok {
		return "", false, nil
	}
	if err := s.Save(m); err != nil {
		return "", false, err
	}
	return removed, true, nil
}
