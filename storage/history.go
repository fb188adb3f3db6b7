// Package storage persists finalized run results so earlier teardown
// runs stay inspectable after the fact.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/yairfalse/purku/types"
)

var bucketRuns = []byte("runs")

// History is a bbolt-backed store of finalized RunResults, keyed by
// run id. Results land here only after Finalize - never mid-run.
type History struct {
	db *bbolt.DB
}

// Open creates or opens the history database at path.
func Open(path string) (*History, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRuns)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history bucket: %w", err)
	}
	return &History{db: db}, nil
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}

// Save persists one finalized run result.
func (h *History) Save(result *types.RunResult) error {
	if result.RunID == "" {
		return fmt.Errorf("run result has no run id")
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}
	return h.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRuns).Put([]byte(result.RunID), data)
	})
}

// Load reads one run result by id.
func (h *History) Load(runID string) (*types.RunResult, error) {
	var data []byte
	err := h.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketRuns).Get([]byte(runID)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("run %s not found", runID)
	}

	var result types.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", runID, err)
	}
	return &result, nil
}

// RunIDs lists all stored run ids in key order.
func (h *History) RunIDs() ([]string, error) {
	var ids []string
	err := h.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRuns).ForEach(func(k, v []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}
