// Package journal provides an append-only audit trail of teardown
// outcomes. One JSONL file per run, timestamped for rotation; every
// outcome is written, never silently dropped.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yairfalse/purku/types"
)

// EntryType defines the kind of journal entry.
type EntryType string

const (
	EntryRunStarted   EntryType = "run_started"
	EntryScopeStarted EntryType = "scope_started"
	EntryOutcome      EntryType = "outcome"
	EntryScopeError   EntryType = "scope_error"
	EntryRunFinished  EntryType = "run_finished"
)

// Entry is a single journal line.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Sequence  int64           `json:"sequence"`
	Type      EntryType       `json:"type"`
	Scope     string          `json:"scope,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Journal appends entries to one run's file. Safe for concurrent use -
// scope workers append while the run is in flight.
type Journal struct {
	mu       sync.Mutex
	file     *os.File
	writer   *bufio.Writer
	sequence int64
}

// Open creates a journal file for one run in dir.
func Open(dir, runID string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("purku-%s.jsonl", runID))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) // #nosec G304 -- path derives from config
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}

	return &Journal{file: file, writer: bufio.NewWriter(file)}, nil
}

// Append writes one entry and flushes it. Outcomes must survive a crash
// mid-run, so flushing is per-entry, not batched.
func (j *Journal) Append(entryType EntryType, scope string, data any) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal journal data: %w", err)
	}

	j.sequence++
	entry := Entry{
		Timestamp: time.Now(),
		Sequence:  j.sequence,
		Type:      entryType,
		Scope:     scope,
		Data:      payload,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}
	if _, err := j.writer.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	return j.writer.Flush()
}

// AppendOutcome records one resource outcome.
func (j *Journal) AppendOutcome(scope types.Scope, rec types.Record) error {
	return j.Append(EntryOutcome, scope.String(), rec)
}

// Close flushes and closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.writer.Flush(); err != nil {
		return err
	}
	return j.file.Close()
}

// Read loads all entries from a journal file, for inspection and tests.
func Read(path string) ([]Entry, error) {
	file, err := os.Open(path) // #nosec G304 -- path derives from config
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("corrupt journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}
