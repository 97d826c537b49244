package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, req := range []string{"a", "b", "c"} {
		require.NoError(t, s.Record(ctx, Entry{
			BatchID:   "batch-1",
			Monorepo:  "mono",
			Requested: req,
			Name:      "@acme/" + req,
			Version:   "1.0.0",
			Archive:   "/app/.pkl/" + req + ".tgz",
			Project:   "/app",
		}))
	}

	got, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Requested)
	assert.Equal(t, "b", got[1].Requested)
	assert.True(t, base.Add(3*time.Minute).Equal(got[0].InstalledAt))

	_, err = uuid.Parse(got[0].InstallID)
	assert.NoError(t, err, "generated IDs are UUIDs")

	all, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, Entry{Requested: "a", Name: "a", Version: "0.0.0"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestClosed(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close is idempotent")

	assert.ErrorIs(t, s.Record(context.Background(), Entry{}), ErrClosed)
	_, err := s.Recent(context.Background(), 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	id, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}
