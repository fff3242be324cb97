package execlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLog(t *testing.T, dir string, now time.Time) *Log {
	t.Helper()
	l := New(dir, "algo_test", time.UTC)
	l.SetNow(func() time.Time { return now })
	return l
}

func TestRecordAppendsEntries(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 10, 10, 5, 0, 0, time.UTC)
	l := newLog(t, dir, now)

	require.NoError(t, l.Record("Bought"))
	require.NoError(t, l.Record("No Action"))

	entries, err := l.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Bought", entries[0].Notes)
	assert.Equal(t, 10, entries[0].CurrentHour)
	assert.Equal(t, "No Action", entries[1].Notes)
}

func TestRecordSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	require.NoError(t, newLog(t, dir, now).Record("Sold"))
	l2 := newLog(t, dir, now.Add(time.Hour))
	require.NoError(t, l2.Record("No Action"))

	entries, err := l2.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 16, entries[1].CurrentHour)
}

func TestRecordReplacesCorruptDump(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "algo_test")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, dumpFile), []byte("{broken"), 0o644))

	now := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
	l := newLog(t, dir, now)
	require.NoError(t, l.Record("No Action"))

	entries, err := l.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "No Action", entries[0].Notes)
}
