// Package validation implements advisory data-quality checks over the
// analysis working tables. Findings never fail a run: every entry is a
// WARNING, and a check that cannot execute is skipped.
package validation

import "time"

// SeverityWarning is the only severity emitted. The column exists so the log
// format stays stable if error-level rules are ever added.
const SeverityWarning = "WARNING"

// Rule sources, naming the pipeline stage that produced a finding.
const (
	SourceBuilding = "building_validation"
	SourceHazard   = "hazard_validation"
	SourceMatching = "matching_validation"
	SourceResults  = "results_validation"
)

// Entry is one appended validation finding.
type Entry struct {
	ID         int64
	BuildingID string // empty for dataset-level findings
	TableName  string
	Source     string
	Rule       string
	Message    string
	Severity   string
	CreatedAt  time.Time
}

// Log is the append-only validation log for one run. IDs are a 1-based
// sequence in append order. Not safe for concurrent use; the pipeline
// appends from a single goroutine.
type Log struct {
	entries []Entry
	nextID  int64
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{nextID: 1}
}

// Append records a finding, stamping the sequence ID and creation time.
func (l *Log) Append(source, rule, table, buildingID, message string) {
	l.entries = append(l.entries, Entry{
		ID:         l.nextID,
		BuildingID: buildingID,
		TableName:  table,
		Source:     source,
		Rule:       rule,
		Message:    message,
		Severity:   SeverityWarning,
		CreatedAt:  clock.Now().UTC(),
	})
	l.nextID++
}

// Entries returns the findings in append order.
func (l *Log) Entries() []Entry { return l.entries }

// Len returns the number of findings.
func (l *Log) Len() int { return len(l.entries) }
