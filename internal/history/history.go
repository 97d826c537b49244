// Package history records installed packages in a local SQLite database so
// staged archives can be traced back to the monorepo and batch that
// produced them.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("history is closed")

const schema = `CREATE TABLE IF NOT EXISTS installs (
    install_id TEXT PRIMARY KEY,
    batch_id TEXT NOT NULL,
    monorepo TEXT NOT NULL,
    requested TEXT NOT NULL,
    name TEXT NOT NULL,
    version TEXT NOT NULL,
    archive TEXT NOT NULL,
    project TEXT NOT NULL,
    installed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_installs_installed_at ON installs (installed_at);`

// Entry is one installed package.
type Entry struct {
	InstallID   string
	BatchID     string
	Monorepo    string
	Requested   string
	Name        string
	Version     string
	Archive     string
	Project     string
	InstalledAt time.Time
}

// Store is an open history database.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// NewID generates a UUID v7 for records and batches.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// Record stores e, filling in InstallID and InstalledAt when unset.
func (s *Store) Record(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return ErrClosed
	}
	if e.InstallID == "" {
		e.InstallID = NewID()
	}
	if e.InstalledAt.IsZero() {
		e.InstalledAt = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO installs (install_id, batch_id, monorepo, requested, name, version, archive, project, installed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.InstallID, e.BatchID, e.Monorepo, e.Requested, e.Name, e.Version, e.Archive, e.Project,
		e.InstalledAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording install of %s: %w", e.Requested, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT install_id, batch_id, monorepo, requested, name, version, archive, project, installed_at
		 FROM installs ORDER BY installed_at DESC, install_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.InstallID, &e.BatchID, &e.Monorepo, &e.Requested, &e.Name, &e.Version, &e.Archive, &e.Project, &at); err != nil {
			return nil, err
		}
		e.InstalledAt, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parsing installed_at %q: %w", at, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
