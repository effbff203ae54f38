package importer

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Action names the write decision taken for one row.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionMatched Action = "matched"
	ActionSkipped Action = "skipped"
)

// RowError is a row-level failure attributable to its originating batch.
type RowError struct {
	Line    int
	Field   string
	Message string
	// Batch is the 1-based originating batch index, set during aggregation.
	Batch int
}

func (e RowError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Summary holds per-category row counts.
type Summary struct {
	Created int
	Updated int
	Matched int
	Skipped int
}

func (s *Summary) add(other Summary) {
	s.Created += other.Created
	s.Updated += other.Updated
	s.Matched += other.Matched
	s.Skipped += other.Skipped
}

// EntityRef points at a newly created record.
type EntityRef struct {
	ID    uuid.UUID
	Label string
}

// RowOutcome records what happened to a single row.
type RowOutcome struct {
	Line       int
	Action     Action
	Tier       Tier
	Confidence int
	EntityID   uuid.UUID
}

// BatchResult is the self-contained outcome of processing one batch. It is
// produced independently of other batches, which keeps aggregation resumable
// under partial failure.
type BatchResult struct {
	Index           int
	Rows            int
	Errors          []RowError
	Warnings        []string
	Summary         Summary
	RowResults      []RowOutcome
	CreatedTeams    []EntityRef
	CreatedAthletes []EntityRef
}

// AggregatedImportResult merges every batch outcome into one report. Built
// once after all batches complete or fail; immutable thereafter.
type AggregatedImportResult struct {
	TotalRows       int
	Errors          []RowError
	Warnings        []string
	Summary         Summary
	RowResults      []RowOutcome
	CreatedTeams    []EntityRef
	CreatedAthletes []EntityRef
}

// Aggregate merges batch results in batch-index order. Workers may complete
// out of order; ordering here is logical, not temporal.
func Aggregate(results []BatchResult) AggregatedImportResult {
	sorted := make([]BatchResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	var agg AggregatedImportResult
	for _, b := range sorted {
		agg.Merge(b)
	}
	return agg
}

// Merge folds one batch into the aggregate. Aggregation is associative as
// long as batch index numbering is preserved: merging [B1,B2] then B3 equals
// aggregating [B1,B2,B3].
func (a *AggregatedImportResult) Merge(b BatchResult) {
	a.TotalRows += b.Rows
	for _, e := range b.Errors {
		tagged := e
		tagged.Batch = b.Index
		tagged.Message = fmt.Sprintf("[Batch %d] %s", b.Index, e.Message)
		a.Errors = append(a.Errors, tagged)
	}
	a.Warnings = append(a.Warnings, b.Warnings...)
	a.Summary.add(b.Summary)
	a.RowResults = append(a.RowResults, b.RowResults...)
	a.CreatedTeams = append(a.CreatedTeams, b.CreatedTeams...)
	a.CreatedAthletes = append(a.CreatedAthletes, b.CreatedAthletes...)
}
