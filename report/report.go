// Package report renders finalized run results into the persisted
// document shape and a terminal summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/yairfalse/purku/types"
)

// Document is the persisted report shape for one run.
type Document struct {
	RunID     string        `json:"run_id"`
	DryRun    bool          `json:"dry_run"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`

	// Summary counts outcomes per resource type.
	Summary map[types.ResourceType]map[types.Outcome]int `json:"summary"`

	Protected []Item             `json:"protected,omitempty"`
	Deleted   []Item             `json:"deleted,omitempty"`
	Blocked   []Item             `json:"blocked,omitempty"`
	Timeout   []Item             `json:"timeout,omitempty"`
	Failed    []Item             `json:"failed,omitempty"`
	Errors    []types.ScopeError `json:"errors,omitempty"`
}

// Item is one resource line in the report.
type Item struct {
	Type   types.ResourceType `json:"type"`
	ID     string             `json:"id"`
	Name   string             `json:"name,omitempty"`
	Scope  string             `json:"scope"`
	Reason string             `json:"reason,omitempty"`
	Error  string             `json:"error,omitempty"`
	At     time.Time          `json:"at"`
}

func item(rec types.Record) Item {
	return Item{
		Type:   rec.Resource.Type,
		ID:     rec.Resource.ID,
		Name:   rec.Resource.Name,
		Scope:  rec.Resource.Scope.String(),
		Reason: rec.Reason,
		Error:  rec.Error,
		At:     rec.At,
	}
}

// Build assembles the report document from a finalized run result.
func Build(result *types.RunResult) *Document {
	doc := &Document{
		RunID:     result.RunID,
		DryRun:    result.DryRun,
		StartTime: result.StartTime,
		EndTime:   result.EndTime,
		Duration:  result.Duration,
		Summary:   make(map[types.ResourceType]map[types.Outcome]int),
		Errors:    result.ScopeErrors,
	}

	count := func(rec types.Record) {
		byOutcome := doc.Summary[rec.Resource.Type]
		if byOutcome == nil {
			byOutcome = make(map[types.Outcome]int)
			doc.Summary[rec.Resource.Type] = byOutcome
		}
		byOutcome[rec.Outcome]++
	}

	for _, sr := range result.Scopes {
		for _, rec := range sr.Deleted {
			count(rec)
			doc.Deleted = append(doc.Deleted, item(rec))
		}
		for _, rec := range sr.AlreadyGone {
			count(rec)
		}
		for _, rec := range sr.Protected {
			count(rec)
			doc.Protected = append(doc.Protected, item(rec))
		}
		for _, rec := range sr.Blocked {
			count(rec)
			doc.Blocked = append(doc.Blocked, item(rec))
		}
		for _, rec := range sr.Timeout {
			count(rec)
			doc.Timeout = append(doc.Timeout, item(rec))
		}
		for _, rec := range sr.Failed {
			count(rec)
			doc.Failed = append(doc.Failed, item(rec))
		}
	}

	sortItems(doc.Deleted)
	sortItems(doc.Protected)
	sortItems(doc.Blocked)
	sortItems(doc.Timeout)
	sortItems(doc.Failed)
	return doc
}

// sortItems keeps report order stable across runs regardless of which
// scope worker finished first.
func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Scope != items[j].Scope {
			return items[i].Scope < items[j].Scope
		}
		if items[i].Type != items[j].Type {
			return items[i].Type < items[j].Type
		}
		return items[i].ID < items[j].ID
	})
}

// WriteJSON renders the document as indented JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteSummary renders a short human-readable rollup.
func WriteSummary(w io.Writer, doc *Document) error {
	mode := "teardown"
	if doc.DryRun {
		mode = "dry run"
	}
	if _, err := fmt.Fprintf(w, "run %s (%s) finished in %s\n", doc.RunID, mode, doc.Duration.Round(time.Millisecond)); err != nil {
		return err
	}

	totals := make(map[types.Outcome]int)
	for _, byOutcome := range doc.Summary {
		for outcome, n := range byOutcome {
			totals[outcome] += n
		}
	}
	order := []types.Outcome{
		types.OutcomeDeleted,
		types.OutcomeAlreadyGone,
		types.OutcomeProtected,
		types.OutcomeBlocked,
		types.OutcomeTimeout,
		types.OutcomeFailed,
	}
	for _, outcome := range order {
		if totals[outcome] == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "  %-12s %d\n", outcome, totals[outcome]); err != nil {
			return err
		}
	}
	for _, se := range doc.Errors {
		if _, err := fmt.Fprintf(w, "  scope %s failed: %s\n", se.Scope, se.Error); err != nil {
			return err
		}
	}
	return nil
}
