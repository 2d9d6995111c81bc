package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scraper-station/pkg/utils"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func TestSnapshotStore_WriteAndLatest(t *testing.T) {
	store := NewSnapshotStore(t.TempDir(), testLogger())

	type payload struct {
		Source string `json:"source"`
		Count  int    `json:"count"`
	}

	path, err := store.Write("hackernews", "top_stories", payload{Source: "Hacker News", Count: 3})
	require.NoError(t, err)

	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "top_stories_"), "filename %q", base)
	assert.True(t, strings.HasSuffix(base, ".json"), "filename %q", base)
	assert.Equal(t, "hackernews", filepath.Base(filepath.Dir(path)), "per-bot subdirectory")

	gotPath, data, err := store.Latest("hackernews", "top_stories")
	require.NoError(t, err)
	assert.Equal(t, path, gotPath)

	var got payload
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Hacker News", got.Source)
	assert.Equal(t, 3, got.Count)
}

func TestSnapshotStore_LatestPicksNewest(t *testing.T) {
	dir := t.TempDir()
	store := NewSnapshotStore(dir, testLogger())

	// Timestamped names sort lexically, so write fixed files directly
	botDir := filepath.Join(dir, "deposits")
	require.NoError(t, os.MkdirAll(botDir, 0755))
	for _, f := range []struct{ name, body string }{
		{"fd_rates_20240101_000000.json", `{"n":1}`},
		{"fd_rates_20250101_000000.json", `{"n":2}`},
		{"other_20260101_000000.json", `{"n":3}`},
	} {
		require.NoError(t, os.WriteFile(filepath.Join(botDir, f.name), []byte(f.body), 0644))
	}

	path, data, err := store.Latest("deposits", "fd_rates")
	require.NoError(t, err)
	assert.Equal(t, "fd_rates_20250101_000000.json", filepath.Base(path))
	assert.Equal(t, `{"n":2}`, string(data))
}

func TestSnapshotStore_LatestNoSnapshot(t *testing.T) {
	store := NewSnapshotStore(t.TempDir(), testLogger())

	_, _, err := store.Latest("nobody", "anything")
	assert.ErrorIs(t, err, utils.ErrNoSnapshot)
}

func TestSnapshotStore_LoadMissingFile(t *testing.T) {
	store := NewSnapshotStore(t.TempDir(), testLogger())

	_, err := store.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, utils.ErrFilesystem)
}
