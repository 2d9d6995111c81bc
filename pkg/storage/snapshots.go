package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"scraper-station/pkg/utils"
)

// SnapshotStore persists bot results as timestamped JSON files under a
// per-bot subdirectory of the data directory. Filenames embed a UTC
// timestamp so lexical order is chronological order.
type SnapshotStore struct {
	dataDir string
	log     *logrus.Entry
}

// NewSnapshotStore creates a SnapshotStore rooted at dataDir
func NewSnapshotStore(dataDir string, logger *logrus.Entry) *SnapshotStore {
	return &SnapshotStore{
		dataDir: dataDir,
		log:     logger.WithField("component", "snapshot_store"),
	}
}

// Write marshals v with indentation and writes it to
// <dataDir>/<bot>/<prefix>_YYYYMMDD_HHMMSS.json, returning the file path.
func (s *SnapshotStore) Write(bot, prefix string, v any) (string, error) {
	dir := filepath.Join(s.dataDir, utils.SanitizeFilename(bot))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: cannot create snapshot directory %s: %w", utils.ErrFilesystem, dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal snapshot for bot '%s': %w", utils.ErrParsing, bot, err)
	}

	name := fmt.Sprintf("%s_%s.json", prefix, time.Now().UTC().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("%w: failed to write snapshot %s: %w", utils.ErrFilesystem, path, err)
	}

	s.log.WithField("bot", bot).Infof("Wrote snapshot: %s", path)
	return path, nil
}

// Latest returns the path and contents of the most recent snapshot with
// the given prefix for a bot. Returns ErrNoSnapshot when the bot has no
// matching snapshot files.
func (s *SnapshotStore) Latest(bot, prefix string) (string, []byte, error) {
	dir := filepath.Join(s.dataDir, utils.SanitizeFilename(bot))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: no snapshots for bot '%s'", utils.ErrNoSnapshot, bot)
		}
		return "", nil, fmt.Errorf("%w: cannot read snapshot directory %s: %w", utils.ErrFilesystem, dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, prefix+"_") && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", nil, fmt.Errorf("%w: no '%s' snapshots for bot '%s'", utils.ErrNoSnapshot, prefix, bot)
	}
	sort.Strings(names)

	path := filepath.Join(dir, names[len(names)-1])
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: failed to read snapshot %s: %w", utils.ErrFilesystem, path, err)
	}
	return path, data, nil
}

// Load reads a snapshot file at an explicit path
func (s *SnapshotStore) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read snapshot %s: %w", utils.ErrFilesystem, path, err)
	}
	return data, nil
}
