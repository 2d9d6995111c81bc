package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"scraper-station/pkg/log"
	"scraper-station/pkg/utils"
)

const (
	runKeyPrefix = "run:"       // Prefix for run record keys in DB
	historyDBDir = "history_db" // Subdirectory name within stateDir for Badger DB files
)

// RunRecord is one bot execution stored in the run history
type RunRecord struct {
	ID            string          `json:"id"`
	Bot           string          `json:"bot"`
	Params        []string        `json:"params,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	Duration      time.Duration   `json:"duration"`
	Status        string          `json:"status"`
	ErrorCategory string          `json:"error_category,omitempty"`
	Result        json.RawMessage `json:"result,omitempty"`
}

// HistoryStore persists bot run records in BadgerDB. Keys embed the run's
// start time in RFC 3339 form, so key order is chronological and a reverse
// scan yields the most recent runs first.
type HistoryStore struct {
	db  *badger.DB
	log *logrus.Entry
}

// NewHistoryStore opens (or creates) the run history database under stateDir
func NewHistoryStore(stateDir string, logger *logrus.Entry) (*HistoryStore, error) {
	entry := logger.WithField("component", "history_store")
	dbPath := filepath.Join(stateDir, historyDBDir)
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: cannot create state directory %s: %w", utils.ErrFilesystem, dbPath, err)
	}

	badgerLogger := log.NewBadgerLogrusAdapter(entry.WithField("component", "badgerdb"))
	opts := badger.DefaultOptions(dbPath).
		WithLogger(badgerLogger).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open history database at %s: %w", utils.ErrDatabase, dbPath, err)
	}

	entry.Debugf("Run history database opened at: %s", dbPath)
	return &HistoryStore{db: db, log: entry}, nil
}

// Record stores a run record. A missing ID is filled with a fresh UUID.
func (h *HistoryStore) Record(rec *RunRecord) error {
	if h.db == nil {
		return errors.New("history DB not initialized")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}

	key := []byte(runKeyPrefix + rec.StartedAt.UTC().Format(time.RFC3339Nano) + ":" + rec.ID)
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal run record '%s': %w", utils.ErrParsing, rec.ID, err)
	}

	err = h.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key, value))
	})
	if err != nil {
		h.log.WithField("key", string(key)).Errorf("DB Update error in Record: %v", err)
		return fmt.Errorf("%w: failed to store run record '%s': %w", utils.ErrDatabase, rec.ID, err)
	}

	h.log.WithFields(logrus.Fields{"bot": rec.Bot, "run_id": rec.ID}).Debug("Recorded run")
	return nil
}

// List returns up to limit run records, most recent first. A limit <= 0
// returns all records.
func (h *HistoryStore) List(limit int) ([]RunRecord, error) {
	if h.db == nil {
		return nil, errors.New("history DB not initialized")
	}

	var records []RunRecord
	prefix := []byte(runKeyPrefix)

	err := h.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek past the last possible run key, then walk backwards
		seekKey := append(append([]byte(nil), prefix...), 0xFF)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(records) >= limit {
				return nil
			}
			err := it.Item().Value(func(val []byte) error {
				var rec RunRecord
				if errJSON := json.Unmarshal(val, &rec); errJSON != nil {
					h.log.Warnf("Failed to unmarshal run record for key '%s': %v. Skipping.", string(it.Item().Key()), errJSON)
					return nil
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list run records: %w", utils.ErrDatabase, err)
	}
	return records, nil
}

// Close cleanly closes the history database
func (h *HistoryStore) Close() error {
	if h.db != nil && !h.db.IsClosed() {
		if err := h.db.Close(); err != nil {
			h.log.Errorf("Error closing history DB: %v", err)
			return err
		}
	}
	return nil
}
