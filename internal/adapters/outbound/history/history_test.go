package history_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/breakguard/breakguard/internal/adapters/outbound/history"
	"github.com/breakguard/breakguard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(ts string, breaking int) domain.ScanEntry {
	return domain.ScanEntry{
		Timestamp:   ts,
		Library:     "react",
		FromVersion: "17",
		ToVersion:   "18",
		Files:       5,
		Summary:     domain.Summary{TotalUniqueSymbols: 9, Breaking: breaking, Compatible: 9 - breaking},
	}
}

func TestHistory_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	e := entry("2026-02-25T10:00:00Z", 2)
	e.CommitHash = "abc1234"
	require.NoError(t, h.Save(dir, e))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e, entries[0])
}

func TestHistory_AppendMultiple(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	require.NoError(t, h.Save(dir, entry("t1", 3)))
	require.NoError(t, h.Save(dir, entry("t2", 2)))
	require.NoError(t, h.Save(dir, entry("t3", 0)))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 3, entries[0].Summary.Breaking)
	assert.Equal(t, "t3", entries[2].Timestamp)
	assert.Equal(t, 0, entries[2].Summary.Breaking)
}

func TestHistory_LoadEmpty(t *testing.T) {
	entries, err := history.New().Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistory_CreatesDirectory(t *testing.T) {
	nestedDir := filepath.Join(t.TempDir(), "deep", "nested")
	h := history.New()

	require.NoError(t, h.Save(nestedDir, entry("t1", 1)))

	entries, err := h.Load(nestedDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHistory_TrimsOldestEntries(t *testing.T) {
	dir := t.TempDir()
	h := history.New(history.WithMaxEntries(2))

	for i := 1; i <= 4; i++ {
		require.NoError(t, h.Save(dir, entry(fmt.Sprintf("t%d", i), i)))
	}

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "t3", entries[0].Timestamp)
	assert.Equal(t, "t4", entries[1].Timestamp)
}

func TestHistory_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, ".breakguard", "history", "scans.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(fp), 0755))
	require.NoError(t, os.WriteFile(fp, []byte("{not json"), 0644))

	_, err := history.New().Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding scan history")

	assert.Error(t, history.New().Save(dir, entry("t1", 0)))
}
