// Package mapping persists the table of named monorepo checkouts.
package mapping

import (
	"github.com/rs/zerolog/log"

	"github.com/mesh-intelligence/pkl/internal/orderedjson"
)

// Entry is one named monorepo.
type Entry struct {
	Name string
	Path string
}

// Mapping is an ordered name to absolute path table. Names are unique;
// re-adding a name replaces its path in place.
type Mapping struct {
	obj *orderedjson.Object
}

// New returns an empty mapping.
func New() *Mapping {
	return &Mapping{obj: &orderedjson.Object{}}
}

// parse decodes a mapping. Entries whose value is not a string are not
// monorepos; they are skipped by lookups and listings but written back
// unchanged.
func parse(data []byte) (*Mapping, error) {
	obj, err := orderedjson.Parse(data)
	if err != nil {
		return nil, err
	}
	for _, f := range obj.Fields() {
		if _, ok := obj.GetString(f.Key); !ok {
			log.Warn().Str("name", f.Key).RawJSON("value", f.Value).Msg("ignoring mapping entry that is not a path")
		}
	}
	return &Mapping{obj: obj}, nil
}

// Resolve returns the path registered under name.
func (m *Mapping) Resolve(name string) (string, bool) {
	path, ok := m.obj.GetString(name)
	if !ok || path == "" {
		return "", false
	}
	return path, true
}

// Upsert registers path under name and returns the previous path, if any.
func (m *Mapping) Upsert(name, path string) (previous string, replaced bool) {
	previous, replaced = m.Resolve(name)
	m.obj.SetString(name, path)
	return previous, replaced
}

// Remove deletes name and returns the path it mapped to.
func (m *Mapping) Remove(name string) (removed string, ok bool) {
	removed, ok = m.Resolve(name)
	if !ok {
		return "", false
	}
	m.obj.Delete(name)
	return removed, true
}

// Len returns the number of entries.
func (m *Mapping) Len() int { return len(m.Entries()) }

// Entries returns the entries in insertion order.
func (m *Mapping) Entries() []Entry {
	fields := m.obj.Fields()
	out := make([]Entry, 0, len(fields))
	for _, f := range fields {
		path, ok := m.obj.GetString(f.Key)
		if !ok {
			continue
		}
		out = append(out, Entry{Name: f.Key, Path: path})
	}
	return out
}

// MarshalIndent renders the mapping as two-space indented JSON.
func (m *Mapping) MarshalIndent() ([]byte, error) {
	return m.obj.Indent()
}
